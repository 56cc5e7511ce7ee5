// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/store"
)

// EventsPerPage is the default number of events returned per page.
const EventsPerPage = 25

// maxEventsPerPage caps the per_page parameter.
const maxEventsPerPage = 200

// EventLister reads the sync event log.
type EventLister interface {
	ListEvents(ctx context.Context, arg store.ListEventsParams) ([]model.Event, error)
}

// EventsHandler handles event log routes.
type EventsHandler struct {
	events EventLister
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events EventLister) *EventsHandler {
	return &EventsHandler{events: events}
}

// List handles GET /api/events?category=&page=&per_page=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parsePositiveInt(q.Get("page"), 1)
	perPage := min(parsePositiveInt(q.Get("per_page"), EventsPerPage), maxEventsPerPage)

	events, err := h.events.ListEvents(r.Context(), store.ListEventsParams{
		Category: q.Get("category"),
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	writeJSONSuccess(w, map[string]any{
		"events":   events,
		"page":     page,
		"per_page": perPage,
	})
}

// parsePositiveInt parses s, returning def for empty, invalid or non-positive input.
func parsePositiveInt(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
