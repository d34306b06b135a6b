// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/thisorthat/models"
	"github.com/danielhkuo/thisorthat/testutil"
)

func TestRegister(t *testing.T) {
	env := setupEnv(t)
	handler := NewAccountHandler(env.svc, env.gate)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "valid registration",
			body:           models.RegisterRequest{Email: "alice@example.com", Password: "pw123", Name: "Alice"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate email",
			body:           models.RegisterRequest{Email: "ALICE@example.com", Password: "other", Name: "Alice 2"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing password",
			body:           models.RegisterRequest{Email: "bob@example.com", Name: "Bob"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing name",
			body:           models.RegisterRequest{Email: "bob@example.com", Password: "pw"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid email",
			body:           models.RegisterRequest{Email: "bob", Password: "pw", Name: "Bob"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Register(w, testutil.MakeRequest("POST", "/register", tt.body, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.UserResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Email != "alice@example.com" || resp.Name != "Alice" {
					t.Errorf("Unexpected response: %+v", resp)
				}
				if strings.Contains(w.Body.String(), "password") {
					t.Error("Response must not carry the password digest")
				}
			}
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/register", strings.NewReader("{nope"))
		w := httptest.NewRecorder()
		handler.Register(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestLogin(t *testing.T) {
	env := setupEnv(t)
	handler := NewAccountHandler(env.svc, env.gate)
	testutil.CreateTestUser(t, env.store, "alice@example.com", "pw123", "Alice")

	t.Run("valid credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest("POST", "/login", models.LoginRequest{Email: "alice@example.com", Password: "pw123"}, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		if testutil.SessionToken(w) == "" {
			t.Error("Expected a session cookie")
		}

		var resp models.UserResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Email != "alice@example.com" || resp.Name != "Alice" {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		bodies := []models.LoginRequest{
			{Email: "alice@example.com", Password: "wrong"},
			{Email: "nobody@example.com", Password: "pw123"},
		}

		var responses []string
		for _, body := range bodies {
			w := httptest.NewRecorder()
			handler.Login(w, testutil.MakeRequest("POST", "/login", body, nil))

			testutil.AssertStatus(t, w, http.StatusUnauthorized)
			if testutil.SessionToken(w) != "" {
				t.Error("Failed login must not set a session cookie")
			}
			responses = append(responses, w.Body.String())
		}

		if responses[0] != responses[1] {
			t.Errorf("Expected identical bodies, got %q and %q", responses[0], responses[1])
		}
	})

	t.Run("failed login keeps prior session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest("POST", "/login", models.LoginRequest{Email: "alice@example.com", Password: "pw123"}, nil))
		token := testutil.SessionToken(w)

		w = httptest.NewRecorder()
		req := testutil.WithSession(testutil.MakeRequest("POST", "/login", models.LoginRequest{Email: "alice@example.com", Password: "bad"}, nil), token)
		handler.Login(w, req)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)

		state, err := env.gate.Read(testutil.WithSession(httptest.NewRequest("GET", "/me", nil), token))
		if err != nil || state.Email != "alice@example.com" {
			t.Errorf("Expected prior session intact, got %+v, %v", state, err)
		}
	})
}

func TestMe(t *testing.T) {
	env := setupEnv(t)
	handler := NewAccountHandler(env.svc, env.gate)
	testutil.CreateTestUser(t, env.store, "alice@example.com", "pw123", "Alice")

	w := httptest.NewRecorder()
	handler.Me(w, asUser(httptest.NewRequest("GET", "/me", nil), "alice@example.com"))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.UserResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Email != "alice@example.com" || resp.Name != "Alice" {
		t.Errorf("Unexpected response: %+v", resp)
	}

	// session for an account that doesn't exist
	w = httptest.NewRecorder()
	handler.Me(w, asUser(httptest.NewRequest("GET", "/me", nil), "ghost@example.com"))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestLogout(t *testing.T) {
	env := setupEnv(t)
	handler := NewAccountHandler(env.svc, env.gate)
	testutil.CreateTestUser(t, env.store, "alice@example.com", "pw123", "Alice")

	logout := env.gate.RequireAuth(handler.Logout)
	me := env.gate.RequireAuth(handler.Me)

	t.Run("without session", func(t *testing.T) {
		w := httptest.NewRecorder()
		logout(w, httptest.NewRequest("POST", "/logout", nil))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("ends the session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest("POST", "/login", models.LoginRequest{Email: "alice@example.com", Password: "pw123"}, nil))
		token := testutil.SessionToken(w)

		w = httptest.NewRecorder()
		me(w, testutil.WithSession(httptest.NewRequest("GET", "/me", nil), token))
		testutil.AssertStatus(t, w, http.StatusOK)

		w = httptest.NewRecorder()
		logout(w, testutil.WithSession(httptest.NewRequest("GET", "/logout", nil), token))
		testutil.AssertStatus(t, w, http.StatusOK)
		if strings.TrimSpace(w.Body.String()) != "{}" {
			t.Errorf("Expected empty object, got %s", w.Body.String())
		}

		w = httptest.NewRecorder()
		me(w, testutil.WithSession(httptest.NewRequest("GET", "/me", nil), token))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)

		w = httptest.NewRecorder()
		logout(w, testutil.WithSession(httptest.NewRequest("POST", "/logout", nil), token))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
