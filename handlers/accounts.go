// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/thisorthat/middleware"
	"github.com/danielhkuo/thisorthat/models"
	"github.com/danielhkuo/thisorthat/polls"
	"github.com/danielhkuo/thisorthat/session"
)

type AccountHandler struct {
	svc  *polls.Service
	gate *session.Gate
}

func NewAccountHandler(svc *polls.Service, gate *session.Gate) *AccountHandler {
	return &AccountHandler{svc: svc, gate: gate}
}

// Register handles POST /register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.UserResponse{
		Email: user.Email,
		Name:  user.Name,
	})
}

// Login handles POST /login
// On failure any session the caller already had is left alone.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.gate.Begin(w, r, user.Email); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged in", "email", user.Email)

	middleware.JSONResponse(w, http.StatusOK, models.UserResponse{
		Email: user.Email,
		Name:  user.Name,
	})
}

// Logout handles GET and POST /logout (behind RequireAuth)
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Purge(w, r); err != nil {
		writeError(w, r, err)
		return
	}

	email, _ := session.IdentityFrom(r.Context())
	slog.Info("user logged out", "email", email)

	middleware.JSONResponse(w, http.StatusOK, struct{}{})
}

// Me handles GET /me (behind RequireAuth)
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, ok := session.IdentityFrom(r.Context())
	if !ok {
		writeError(w, r, models.ErrAuthenticationRequired)
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.UserResponse{
		Email: user.Email,
		Name:  user.Name,
	})
}
