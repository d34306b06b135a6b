// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the thisorthat API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, gate, cfg)

# Endpoints

Health:

	GET /health

Accounts:

	POST /register       - Create account
	POST /login          - Start a session (sets thisorthat_session cookie)
	GET|POST /logout     - End the session (session required)
	GET  /me             - Current user (session required)

Polls:

	POST /polls                     - Propose a poll (session required if PROPOSE_REQUIRES_AUTH)
	GET  /polls?hasVotedIn=bool     - Approved polls by vote state (session required)
	POST /pollResponses             - Vote (session required)
	GET  /polls/{id}                - Results, once the voting window has closed

Moderation (requires X-Moderator-Key, only registered when MODERATOR_KEY is set):

	POST /polls/{id}/approve

# Handler Initialization

The router creates handler instances with dependency injection:

	accountHandler := handlers.NewAccountHandler(svc, gate)
	pollHandler := handlers.NewPollHandler(svc, cfg)
	votingHandler := handlers.NewVotingHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)

Session-protected routes are wrapped in gate.RequireAuth, and everything
but /health and / in middleware.WithLogging.
*/
package router
