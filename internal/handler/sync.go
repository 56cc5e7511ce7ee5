// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-localazy/internal/hook"
	"github.com/olegiv/ocms-localazy/internal/syncer"
)

// Syncer runs synchronization invocations.
type Syncer interface {
	ExportAll(ctx context.Context) (*syncer.Report, error)
	ExportCollectionItems(ctx context.Context, collection string, ids []string) (*syncer.Report, error)
	Import(ctx context.Context) (*syncer.Report, error)
}

// Dispatcher delivers content-store events to the registered hooks.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev hook.Event) error
}

// SyncHandler exposes the synchronization operations.
type SyncHandler struct {
	syncer Syncer
	hooks  Dispatcher
	logger *slog.Logger
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(s Syncer, hooks Dispatcher, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{syncer: s, hooks: hooks, logger: logger}
}

// exportItemsRequest is the body of POST /api/sync/export/{collection}.
type exportItemsRequest struct {
	IDs []string `json:"ids"`
}

// hookRequest is the body of POST /api/hooks/{event}.
type hookRequest struct {
	Collection string   `json:"collection"`
	Keys       []string `json:"keys"`
}

// Export handles POST /api/sync/export.
func (h *SyncHandler) Export(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncer.ExportAll(r.Context())
	h.writeReport(w, report, err)
}

// ExportCollection handles POST /api/sync/export/{collection}. Without ids
// every item of the collection is exported.
func (h *SyncHandler) ExportCollection(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	var req exportItemsRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.syncer.ExportCollectionItems(r.Context(), collection, req.IDs)
	h.writeReport(w, report, err)
}

// Import handles POST /api/sync/import.
func (h *SyncHandler) Import(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncer.Import(r.Context())
	h.writeReport(w, report, err)
}

// Hook handles POST /api/hooks/{event}, the webhook target of the content store.
func (h *SyncHandler) Hook(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "event")
	if !slices.Contains(hook.Names, name) {
		writeJSONError(w, http.StatusNotFound, "unknown event: "+name)
		return
	}
	var req hookRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev := hook.Event{Name: name, Collection: req.Collection, Keys: req.Keys}
	if err := h.hooks.Dispatch(r.Context(), ev); err != nil {
		switch {
		case errors.Is(err, syncer.ErrMissingConfiguration):
			writeJSONError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("hook dispatch failed", "category", "system", "event", name, "error", err)
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSONSuccess(w, map[string]any{"event": ev})
}

// writeReport maps an invocation outcome to a response. Missing
// configuration is a client-side problem; a failed run is reported with
// its report so callers can see why.
func (h *SyncHandler) writeReport(w http.ResponseWriter, report *syncer.Report, err error) {
	if err != nil && !errors.Is(err, syncer.ErrMissingConfiguration) {
		logAndInternalError(w, "sync invocation failed", "category", "system", "error", err)
		return
	}

	data := map[string]any{"report": report}
	switch {
	case err != nil:
		data["error"] = err.Error()
		writeJSON(w, http.StatusConflict, false, data)
	case report.Status == syncer.StatusFailed:
		data["error"] = report.Message
		writeJSON(w, http.StatusBadGateway, false, data)
	default:
		writeJSON(w, http.StatusOK, true, data)
	}
}
