// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/thisorthat/db"
	"github.com/danielhkuo/thisorthat/polls"
	"github.com/danielhkuo/thisorthat/session"
	"github.com/danielhkuo/thisorthat/testutil"
)

type testEnv struct {
	store *db.Store
	svc   *polls.Service
	gate  *session.Gate
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	store := testutil.SetupTestStore(t)
	return &testEnv{
		store: store,
		svc:   testutil.NewTestService(t, store),
		gate:  testutil.NewTestGate(),
	}
}

// asUser attaches an authenticated identity the way RequireAuth does
func asUser(req *http.Request, email string) *http.Request {
	return req.WithContext(session.WithIdentity(req.Context(), email))
}
