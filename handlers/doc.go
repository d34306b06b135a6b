// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the thisorthat API.

# Handler Types

Each handler is a struct wrapping the poll service:

  - AccountHandler: registration, login, logout, current user
  - PollHandler: proposals, listings, moderation
  - VotingHandler: casting votes
  - ResultsHandler: results once a poll's voting window has closed

	pollHandler := handlers.NewPollHandler(svc, cfg)

Handlers that need a caller read it with session.IdentityFrom, so the router
must wrap them in gate.RequireAuth.

# Voting

	POST /pollResponses {"poll_id": "...", "choice": true}

choice true votes for prompt_a, false for prompt_b. A user gets one vote per
poll; any further attempt is 409 Conflict.

# Results

	GET /polls/{id}

Results are 404 until 168 hours after the poll was created, the same
response a nonexistent poll gets.

# Errors

Service errors are mapped in writeError:

	ErrAuthenticationRequired, ErrInvalidCredentials → 401
	ErrConflict                                      → 409
	ErrNotFound                                      → 404
	ErrValidation                                    → 400
	ErrUpstreamUnavailable                           → 503
	ErrUpstreamShape and anything else               → 500

Store failures are logged with detail and answered with a generic message.
*/
package handlers
