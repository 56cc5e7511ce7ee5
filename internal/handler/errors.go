// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"slices"

	"github.com/olegiv/ocms-localazy/internal/errtrack"
)

// ErrorsHandler exposes the tracked synchronization errors.
type ErrorsHandler struct {
	tracker *errtrack.Tracker
}

// NewErrorsHandler creates a new ErrorsHandler.
func NewErrorsHandler(tracker *errtrack.Tracker) *ErrorsHandler {
	return &ErrorsHandler{tracker: tracker}
}

// List handles GET /api/errors. The optional category parameter filters
// the list; counts always cover every category.
func (h *ErrorsHandler) List(w http.ResponseWriter, r *http.Request) {
	var errs []errtrack.Info
	if c := r.URL.Query().Get("category"); c != "" {
		category := errtrack.Category(c)
		if !slices.Contains(errtrack.Categories, category) {
			writeJSONError(w, http.StatusBadRequest, "unknown category: "+c)
			return
		}
		errs = h.tracker.ByCategory(category)
	} else {
		errs = h.tracker.Errors()
	}
	if errs == nil {
		errs = []errtrack.Info{}
	}

	writeJSONSuccess(w, map[string]any{
		"errors": errs,
		"counts": h.tracker.Counts(),
	})
}

// Clear handles DELETE /api/errors.
func (h *ErrorsHandler) Clear(w http.ResponseWriter, _ *http.Request) {
	h.tracker.Clear()
	writeJSONSuccess(w, nil)
}
