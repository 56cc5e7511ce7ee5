// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-localazy/internal/scheduler"
)

// JobRegistry lists and controls scheduled jobs.
type JobRegistry interface {
	List() []scheduler.JobInfo
	TriggerNow(source, name string) error
	UpdateSchedule(source, name, newSchedule string) error
	ResetSchedule(source, name string) error
}

// SchedulerHandler handles scheduler routes.
type SchedulerHandler struct {
	registry JobRegistry
	logger   *slog.Logger
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(registry JobRegistry, logger *slog.Logger) *SchedulerHandler {
	return &SchedulerHandler{registry: registry, logger: logger}
}

// List handles GET /api/scheduler/jobs.
func (h *SchedulerHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSONSuccess(w, map[string]any{"jobs": h.registry.List()})
}

// TriggerNow handles POST /api/scheduler/jobs/{source}/{name}/trigger. The
// job runs in the background.
func (h *SchedulerHandler) TriggerNow(w http.ResponseWriter, r *http.Request) {
	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	if err := h.registry.TriggerNow(source, name); err != nil {
		h.writeJobError(w, err)
		return
	}
	h.logger.Info("scheduler job triggered", "category", "system", "source", source, "name", name)
	writeJSON(w, http.StatusAccepted, true, map[string]any{"source": source, "name": name})
}

// UpdateSchedule handles PUT /api/scheduler/jobs/{source}/{name}/schedule.
func (h *SchedulerHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	var req struct {
		Schedule string `json:"schedule"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	schedule := strings.TrimSpace(req.Schedule)
	if schedule == "" {
		writeJSONError(w, http.StatusBadRequest, "schedule is required")
		return
	}

	if err := h.registry.UpdateSchedule(source, name, schedule); err != nil {
		h.writeJobError(w, err)
		return
	}
	h.logger.Info("scheduler job updated", "category", "system", "source", source, "name", name, "schedule", schedule)
	writeJSONSuccess(w, map[string]any{"source": source, "name": name, "schedule": schedule})
}

// ResetSchedule handles DELETE /api/scheduler/jobs/{source}/{name}/schedule.
func (h *SchedulerHandler) ResetSchedule(w http.ResponseWriter, r *http.Request) {
	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	if err := h.registry.ResetSchedule(source, name); err != nil {
		h.writeJobError(w, err)
		return
	}
	h.logger.Info("scheduler job reset", "category", "system", "source", source, "name", name)
	writeJSONSuccess(w, map[string]any{"source": source, "name": name})
}

func (h *SchedulerHandler) writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scheduler.ErrTriggerRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, scheduler.ErrJobRunning):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		writeJSONError(w, http.StatusBadRequest, err.Error())
	}
}
