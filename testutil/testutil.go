// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/thisorthat/auth"
	"github.com/danielhkuo/thisorthat/cliparse"
	"github.com/danielhkuo/thisorthat/db"
	"github.com/danielhkuo/thisorthat/models"
	"github.com/danielhkuo/thisorthat/polls"
	"github.com/danielhkuo/thisorthat/session"
)

// TestModeratorKey is the moderator key in GetTestConfig
const TestModeratorKey = "test-moderator-key"

// HasherParams are argon2id settings cheap enough for tests
var HasherParams = auth.Params{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// SetupTestDB creates a fresh sqlite database in a temp dir with the full schema
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	url := "file:" + filepath.Join(t.TempDir(), "test.db")

	conn, err := db.Open(ctx, cliparse.DatabaseSQLite, url, 4)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore is SetupTestDB wrapped in a Store
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	return db.NewStore(SetupTestDB(t), 5*time.Second)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file::memory:",
		DatabaseType:   cliparse.DatabaseSQLite,
		MaxOpenConns:   1,
		StoreTimeout:   5 * time.Second,
		SessionBackend: cliparse.SessionMemory,
		SessionTTL:     time.Hour,
		AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:5173"},
		ModeratorKey:   TestModeratorKey,
		LogFormat:      "text",
	}
}

// NewTestHasher returns a hasher using HasherParams
func NewTestHasher(t *testing.T) *auth.Hasher {
	t.Helper()
	h, err := auth.NewHasher(HasherParams)
	if err != nil {
		t.Fatalf("Failed to create hasher: %v", err)
	}
	return h
}

// NewTestService returns a Service over store with a test hasher
func NewTestService(t *testing.T, store *db.Store) *polls.Service {
	t.Helper()
	svc, err := polls.NewService(store, NewTestHasher(t))
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return svc
}

// NewTestGate returns a Gate over an in-memory session store
func NewTestGate() *session.Gate {
	return session.NewGate(session.NewMemoryStore(1000, time.Hour), time.Hour, false)
}

// CreateTestUser registers a user directly in the store
func CreateTestUser(t *testing.T, store *db.Store, email, password, name string) {
	t.Helper()

	digest, err := NewTestHasher(t).Hash(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	_, err = store.InsertUser(context.Background(), models.User{
		Email:        email,
		PasswordHash: digest,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
}

// CreateTestPoll inserts a poll created at createdAt and returns its ID
func CreateTestPoll(t *testing.T, store *db.Store, approved bool, createdAt time.Time) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := store.InsertPoll(context.Background(), models.Poll{
		ID:           pollID,
		QuestionText: "Cats or dogs?",
		PromptA:      "Cats",
		PromptB:      "Dogs",
		IsApproved:   approved,
		CreatedAt:    createdAt.UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// CreateCorruptPoll writes an approved poll whose created_at can't be read
// back as a time
func CreateCorruptPoll(t *testing.T, store *db.Store) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := store.DB().ExecContext(context.Background(), `
		INSERT INTO poll (id, question_text, prompt_a, prompt_b, is_approved, created_at)
		VALUES ($1, 'Q', 'A', 'B', 1, 'not a timestamp')
	`, pollID)
	if err != nil {
		t.Fatalf("Failed to create corrupt poll: %v", err)
	}

	return pollID
}

// AddTestResponse records a vote directly in the store
func AddTestResponse(t *testing.T, store *db.Store, pollID, email string, choice models.Choice) {
	t.Helper()

	err := store.WithTx(context.Background(), func(ctx context.Context, tx *db.Conn) error {
		_, err := tx.InsertResponse(ctx, models.PollResponse{
			ID:        uuid.NewString(),
			PollID:    pollID,
			UserEmail: email,
			Choice:    choice,
			CreatedAt: time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// WithSession attaches a session cookie to req and returns it
func WithSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	return req
}

// SessionToken returns the session cookie value set on a response, or ""
func SessionToken(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge >= 0 {
			return c.Value
		}
	}
	return ""
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
