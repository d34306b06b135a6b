// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/thisorthat/middleware"
	"github.com/danielhkuo/thisorthat/polls"
)

type ResultsHandler struct {
	svc *polls.Service
}

func NewResultsHandler(svc *polls.Service) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// GetResults handles GET /polls/{id}
// Results are sealed for a week after creation; until then the poll is 404,
// same as a poll that doesn't exist.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	results, err := h.svc.Results(r.Context(), pollID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
