// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/thisorthat/middleware"
	"github.com/danielhkuo/thisorthat/models"
)

// writeError maps an error from the poll service or the session gate onto a
// status code. Store failures are logged in full and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrAuthenticationRequired):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, models.ErrInvalidCredentials):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, models.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, detail(err, models.ErrConflict))
	case errors.Is(err, models.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, models.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, detail(err, models.ErrValidation))
	case errors.Is(err, models.ErrUpstreamUnavailable):
		slog.Error("store unavailable", "error", err, "path", r.URL.Path)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		// shape errors and anything unclassified
		slog.Error("internal error", "error", err, "path", r.URL.Path)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// detail strips the error kind off a wrapped message, leaving the
// caller-facing part ("question_text is required").
func detail(err, kind error) string {
	return strings.TrimSuffix(err.Error(), ": "+kind.Error())
}
