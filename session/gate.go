// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/thisorthat/auth"
	"github.com/danielhkuo/thisorthat/middleware"
	"github.com/danielhkuo/thisorthat/models"
)

// CookieName is the cookie carrying the session token
const CookieName = "thisorthat_session"

// State is the outcome of reading a request's session. The zero value is
// Anonymous.
type State struct {
	Email string
}

func (s State) Authenticated() bool {
	return s.Email != ""
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the authenticated email
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, identityKey{}, email)
}

// IdentityFrom returns the email attached by RequireAuth, if any
func IdentityFrom(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(identityKey{}).(string)
	return email, ok && email != ""
}

// Gate resolves the caller of each request from its session cookie.
type Gate struct {
	store  Store
	ttl    time.Duration
	secure bool
}

func NewGate(store Store, ttl time.Duration, secure bool) *Gate {
	return &Gate{store: store, ttl: ttl, secure: secure}
}

// Read resolves the request's session. A missing cookie, an unknown token or
// a record without an email are all Anonymous. Only a failing store is an
// error.
func (g *Gate) Read(r *http.Request) (State, error) {
	token := tokenFrom(r)
	if token == "" {
		return State{}, nil
	}

	rec, err := g.store.Get(r.Context(), token)
	switch {
	case errors.Is(err, ErrNotFound):
		return State{}, nil
	case isDecodeErr(err):
		slog.Warn("discarding unreadable session record", "error", err)
		return State{}, nil
	case err != nil:
		return State{}, fmt.Errorf("%w: session store: %w", models.ErrUpstreamUnavailable, err)
	}

	return State{Email: strings.TrimSpace(rec.Email)}, nil
}

// RequireAuth wraps next so it only runs for authenticated callers. The
// caller's email is available to next through IdentityFrom.
func (g *Gate) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := g.Read(r)
		if err != nil {
			slog.Error("session read failed", "error", err, "path", r.URL.Path)
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Session store unavailable")
			return
		}
		if !state.Authenticated() {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), state.Email)))
	}
}

// Begin starts a new session bound to email and sets its cookie. Any session
// the request already carried is dropped once the new one is stored; if
// storing fails the old session is left as it was.
func (g *Gate) Begin(w http.ResponseWriter, r *http.Request, email string) error {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := g.store.Put(r.Context(), token, Record{Email: email}); err != nil {
		return fmt.Errorf("%w: session store: %w", models.ErrUpstreamUnavailable, err)
	}
	http.SetCookie(w, g.cookie(token, int(g.ttl.Seconds())))

	if old := tokenFrom(r); old != "" && old != token {
		// the old record still expires on its own TTL
		if err := g.store.Delete(r.Context(), old); err != nil {
			slog.Warn("failed to drop previous session", "error", err)
		}
	}
	return nil
}

// Purge deletes the request's session record and expires its cookie. It does
// not depend on the session having been read first, and purging a request
// without a session is a no-op.
func (g *Gate) Purge(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, g.cookie("", -1))

	token := tokenFrom(r)
	if token == "" {
		return nil
	}
	if err := g.store.Delete(r.Context(), token); err != nil {
		return fmt.Errorf("%w: session store: %w", models.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (g *Gate) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func tokenFrom(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func isDecodeErr(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
