// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/thisorthat/middleware"
	"github.com/danielhkuo/thisorthat/models"
	"github.com/danielhkuo/thisorthat/polls"
	"github.com/danielhkuo/thisorthat/session"
)

type VotingHandler struct {
	svc *polls.Service
}

func NewVotingHandler(svc *polls.Service) *VotingHandler {
	return &VotingHandler{svc: svc}
}

// CastVote handles POST /pollResponses (behind RequireAuth)
// One vote per user per poll; a repeat is 409 whatever the choice.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	email, ok := session.IdentityFrom(r.Context())
	if !ok {
		writeError(w, r, models.ErrAuthenticationRequired)
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.PollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}
	if req.Choice == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice is required")
		return
	}

	resp, err := h.svc.CastVote(r.Context(), email, req.PollID, *req.Choice)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		ResponseID: resp.ID,
		PollID:     resp.PollID,
		Choice:     resp.Choice,
	})
}
