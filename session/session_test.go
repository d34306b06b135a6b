// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielhkuo/thisorthat/models"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, time.Hour)

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if err := s.Put(ctx, "tok", Record{Email: "alice@example.com"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, err := s.Get(ctx, "tok")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Email != "alice@example.com" {
		t.Errorf("Expected alice@example.com, got %q", rec.Email)
	}

	if err := s.Delete(ctx, "tok"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	// deleting twice is fine
	if err := s.Delete(ctx, "tok"); err != nil {
		t.Errorf("Second delete failed: %v", err)
	}
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, time.Hour)

	s.Put(ctx, "a", Record{Email: "a@example.com"})
	s.Put(ctx, "b", Record{Email: "b@example.com"})

	// touch a so b becomes the oldest
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatalf("Get a failed: %v", err)
	}
	s.Put(ctx, "c", Record{Email: "c@example.com"})

	if s.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", s.Len())
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected b evicted, got %v", err)
	}
	for _, tok := range []string{"a", "c"} {
		if _, err := s.Get(ctx, tok); err != nil {
			t.Errorf("Expected %s present, got %v", tok, err)
		}
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, time.Minute)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Put(ctx, "tok", Record{Email: "alice@example.com"})

	now = now.Add(59 * time.Second)
	if _, err := s.Get(ctx, "tok"); err != nil {
		t.Fatalf("Expected record before ttl, got %v", err)
	}

	now = now.Add(time.Second)
	if _, err := s.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound at ttl, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected expired record dropped, got %d entries", s.Len())
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	s := NewRedisStore(addr, time.Minute)
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	if _, err := s.Get(ctx, "thisorthat-test-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if err := s.Put(ctx, "thisorthat-test", Record{Email: "alice@example.com"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	rec, err := s.Get(ctx, "thisorthat-test")
	if err != nil || rec.Email != "alice@example.com" {
		t.Fatalf("Get = %+v, %v", rec, err)
	}

	if err := s.Delete(ctx, "thisorthat-test"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "thisorthat-test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (Record, error) {
	return Record{}, errors.New("connection refused")
}
func (failingStore) Put(context.Context, string, Record) error { return errors.New("connection refused") }
func (failingStore) Delete(context.Context, string) error      { return errors.New("connection refused") }

func requestWithToken(token string) *http.Request {
	req := httptest.NewRequest("GET", "/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	return req
}

// beginSession logs email in and returns the issued token
func beginSession(t *testing.T, g *Gate, email string) string {
	t.Helper()
	w := httptest.NewRecorder()
	if err := g.Begin(w, httptest.NewRequest("POST", "/login", nil), email); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c.Value
		}
	}
	t.Fatal("Begin set no session cookie")
	return ""
}

func TestGate_RequireAuth(t *testing.T) {
	store := NewMemoryStore(100, time.Hour)
	gate := NewGate(store, time.Hour, false)
	ctx := context.Background()

	valid := beginSession(t, gate, "alice@example.com")
	store.Put(ctx, "no-email", Record{})
	store.Put(ctx, "blank-email", Record{Email: "   "})

	// unreadable record
	store.Put(ctx, "corrupt", Record{})
	store.idx["corrupt"].Value.(*memItem).val = []byte(`{"email":`)

	testCases := []struct {
		name         string
		token        string
		wantStatus   int
		wantCalled   bool
		wantIdentity string
	}{
		{"no cookie", "", http.StatusUnauthorized, false, ""},
		{"unknown token", "nope", http.StatusUnauthorized, false, ""},
		{"record without email", "no-email", http.StatusUnauthorized, false, ""},
		{"blank email", "blank-email", http.StatusUnauthorized, false, ""},
		{"corrupt record", "corrupt", http.StatusUnauthorized, false, ""},
		{"valid session", valid, http.StatusOK, true, "alice@example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			var identity string
			handler := gate.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
				called = true
				identity, _ = IdentityFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			w := httptest.NewRecorder()
			handler(w, requestWithToken(tc.token))

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			if called != tc.wantCalled {
				t.Errorf("Expected handler called=%v, got %v", tc.wantCalled, called)
			}
			if identity != tc.wantIdentity {
				t.Errorf("Expected identity %q, got %q", tc.wantIdentity, identity)
			}
		})
	}
}

func TestGate_StoreFailure(t *testing.T) {
	gate := NewGate(failingStore{}, time.Hour, false)

	called := false
	handler := gate.RequireAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	handler(w, requestWithToken("whatever"))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	if called {
		t.Error("Handler must not run when the session store fails")
	}

	if _, err := gate.Read(requestWithToken("whatever")); !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable from Read, got %v", err)
	}

	err := gate.Begin(httptest.NewRecorder(), httptest.NewRequest("POST", "/login", nil), "alice@example.com")
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable from Begin, got %v", err)
	}
}

func TestGate_BeginCookie(t *testing.T) {
	gate := NewGate(NewMemoryStore(10, time.Hour), time.Hour, true)

	w := httptest.NewRecorder()
	if err := gate.Begin(w, httptest.NewRequest("POST", "/login", nil), "alice@example.com"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || len(c.Value) != 43 {
		t.Errorf("Unexpected cookie %s=%q", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Errorf("Unexpected cookie attributes: %+v", c)
	}
	if c.MaxAge != 3600 {
		t.Errorf("Expected MaxAge 3600, got %d", c.MaxAge)
	}
}

func TestGate_BeginReplacesPriorSession(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	gate := NewGate(store, time.Hour, false)

	first := beginSession(t, gate, "alice@example.com")

	req := httptest.NewRequest("POST", "/login", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: first})
	w := httptest.NewRecorder()
	if err := gate.Begin(w, req, "bob@example.com"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	second := w.Result().Cookies()[0].Value
	if second == first {
		t.Fatal("Expected a new token on login")
	}

	state, err := gate.Read(requestWithToken(first))
	if err != nil || state.Authenticated() {
		t.Errorf("Expected old token anonymous, got %+v, %v", state, err)
	}
	state, err = gate.Read(requestWithToken(second))
	if err != nil || state.Email != "bob@example.com" {
		t.Errorf("Expected new token bound to bob, got %+v, %v", state, err)
	}
}

// putFailStore refuses new records but otherwise behaves like the store it wraps
type putFailStore struct {
	*MemoryStore
}

func (putFailStore) Put(context.Context, string, Record) error { return errors.New("connection refused") }

func TestGate_BeginFailureKeepsPriorSession(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	first := beginSession(t, NewGate(store, time.Hour, false), "alice@example.com")

	gate := NewGate(putFailStore{store}, time.Hour, false)
	req := httptest.NewRequest("POST", "/login", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: first})
	w := httptest.NewRecorder()

	err := gate.Begin(w, req, "alice@example.com")
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Fatalf("Expected ErrUpstreamUnavailable, got %v", err)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("Expected no cookie on failed login")
	}

	state, err := gate.Read(requestWithToken(first))
	if err != nil || state.Email != "alice@example.com" {
		t.Errorf("Expected prior session intact, got %+v, %v", state, err)
	}
}

func TestGate_Purge(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	gate := NewGate(store, time.Hour, false)

	t.Run("after read", func(t *testing.T) {
		token := beginSession(t, gate, "alice@example.com")

		req := requestWithToken(token)
		if state, _ := gate.Read(req); !state.Authenticated() {
			t.Fatal("Expected authenticated before purge")
		}

		w := httptest.NewRecorder()
		if err := gate.Purge(w, req); err != nil {
			t.Fatalf("Purge failed: %v", err)
		}

		if state, _ := gate.Read(requestWithToken(token)); state.Authenticated() {
			t.Error("Expected anonymous after purge")
		}

		c := w.Result().Cookies()[0]
		if c.Name != CookieName || c.MaxAge >= 0 || c.Value != "" {
			t.Errorf("Expected expired cookie, got %+v", c)
		}
	})

	t.Run("without prior read", func(t *testing.T) {
		token := beginSession(t, gate, "alice@example.com")

		if err := gate.Purge(httptest.NewRecorder(), requestWithToken(token)); err != nil {
			t.Fatalf("Purge failed: %v", err)
		}
		if _, err := store.Get(context.Background(), token); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected record gone, got %v", err)
		}
	})

	t.Run("no session", func(t *testing.T) {
		if err := gate.Purge(httptest.NewRecorder(), requestWithToken("")); err != nil {
			t.Errorf("Expected no-op, got %v", err)
		}
	})

	t.Run("twice", func(t *testing.T) {
		token := beginSession(t, gate, "alice@example.com")
		for i := 0; i < 2; i++ {
			if err := gate.Purge(httptest.NewRecorder(), requestWithToken(token)); err != nil {
				t.Errorf("Purge %d failed: %v", i, err)
			}
		}
	})
}

func TestIdentityFrom(t *testing.T) {
	if _, ok := IdentityFrom(context.Background()); ok {
		t.Error("Expected no identity on a bare context")
	}
	if _, ok := IdentityFrom(WithIdentity(context.Background(), "")); ok {
		t.Error("Expected empty identity to be absent")
	}
	email, ok := IdentityFrom(WithIdentity(context.Background(), "alice@example.com"))
	if !ok || email != "alice@example.com" {
		t.Errorf("Expected alice@example.com, got %q", email)
	}
}
