// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session decides who is calling.

A session is a random token in the thisorthat_session cookie mapped, in a
Store, to a Record holding the caller's email. Reading a request yields
one of two states:

  - Anonymous: no cookie, unknown or expired token, unreadable record, or a
    record without an email
  - Authenticated: the record's email

# Stores

	store := session.NewMemoryStore(10000, cfg.SessionTTL)    // single process
	store := session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL) // shared

Redis keys are session:<token> holding the JSON record, expiring after the
TTL.

# Gate

	gate := session.NewGate(store, cfg.SessionTTL, cfg.CookieSecure)

	mux.HandleFunc("GET /me", gate.RequireAuth(h.Me))

	email, _ := session.IdentityFrom(r.Context())

RequireAuth answers 401 for Anonymous callers without running the handler,
and 503 if the store can't be read.

Begin issues a fresh token on login and deletes any token the request
already carried. Purge deletes the request's record and expires the cookie;
it takes effect whether or not the session was read earlier in the request.
*/
package session
