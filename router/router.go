// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/thisorthat/cliparse"
	"github.com/danielhkuo/thisorthat/handlers"
	"github.com/danielhkuo/thisorthat/middleware"
	"github.com/danielhkuo/thisorthat/polls"
	"github.com/danielhkuo/thisorthat/session"
)

func NewRouter(svc *polls.Service, gate *session.Gate, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(svc, gate)
	pollHandler := handlers.NewPollHandler(svc, cfg)
	votingHandler := handlers.NewVotingHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /register", middleware.WithLogging(accountHandler.Register))
	mux.HandleFunc("POST /login", middleware.WithLogging(accountHandler.Login))
	mux.HandleFunc("GET /logout", middleware.WithLogging(gate.RequireAuth(accountHandler.Logout)))
	mux.HandleFunc("POST /logout", middleware.WithLogging(gate.RequireAuth(accountHandler.Logout)))
	mux.HandleFunc("GET /me", middleware.WithLogging(gate.RequireAuth(accountHandler.Me)))

	// Polls
	createPoll := pollHandler.CreatePoll
	if cfg.ProposeRequiresAuth {
		createPoll = gate.RequireAuth(createPoll)
	}
	mux.HandleFunc("POST /polls", middleware.WithLogging(createPoll))
	mux.HandleFunc("GET /polls", middleware.WithLogging(gate.RequireAuth(pollHandler.ListPolls)))
	mux.HandleFunc("POST /pollResponses", middleware.WithLogging(gate.RequireAuth(votingHandler.CastVote)))

	// Results (public, sealed for the voting window)
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(resultsHandler.GetResults))

	// Moderation
	if cfg.ModeratorKey != "" {
		mux.HandleFunc("POST /polls/{id}/approve", middleware.WithLogging(pollHandler.ApprovePoll))
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("thisorthat API v1"))
	})

	return mux
}
