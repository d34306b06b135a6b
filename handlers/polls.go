// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/thisorthat/auth"
	"github.com/danielhkuo/thisorthat/cliparse"
	"github.com/danielhkuo/thisorthat/middleware"
	"github.com/danielhkuo/thisorthat/models"
	"github.com/danielhkuo/thisorthat/polls"
	"github.com/danielhkuo/thisorthat/session"
)

type PollHandler struct {
	svc *polls.Service
	cfg cliparse.Config
}

func NewPollHandler(svc *polls.Service, cfg cliparse.Config) *PollHandler {
	return &PollHandler{svc: svc, cfg: cfg}
}

// CreatePoll handles POST /polls
// New polls are unapproved and don't show up in listings until approved.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.svc.Propose(r.Context(), polls.ProposeInput{
		QuestionText: req.QuestionText,
		PromptA:      req.PromptA,
		PromptB:      req.PromptB,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: poll.ID,
	})
}

// ListPolls handles GET /polls?hasVotedIn=true|false (behind RequireAuth)
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	email, ok := session.IdentityFrom(r.Context())
	if !ok {
		writeError(w, r, models.ErrAuthenticationRequired)
		return
	}

	raw := r.URL.Query().Get("hasVotedIn")
	if raw == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "hasVotedIn is required")
		return
	}
	hasVotedIn, err := strconv.ParseBool(raw)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "hasVotedIn must be true or false")
		return
	}

	visible, err := h.svc.ListVisible(r.Context(), email, hasVotedIn)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, visible)
}

// ApprovePoll handles POST /polls/{id}/approve
// Requires X-Moderator-Key header
func (h *PollHandler) ApprovePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	moderatorKey := r.Header.Get("X-Moderator-Key")
	if err := auth.ValidateModeratorKey(moderatorKey, h.cfg.ModeratorKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid moderator key")
		return
	}

	if err := h.svc.Approve(r.Context(), pollID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
