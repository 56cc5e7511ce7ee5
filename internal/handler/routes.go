// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/ocms-localazy/internal/middleware"
)

// Handlers groups the route handlers. Scheduler and Events may be nil.
type Handlers struct {
	Health    *HealthHandler
	Sync      *SyncHandler
	Config    *ConfigHandler
	Errors    *ErrorsHandler
	Events    *EventsHandler
	Scheduler *SchedulerHandler
}

// RouterConfig configures the middleware stack.
type RouterConfig struct {
	APIToken       string
	RateLimit      float64 // requests per second per client, 0 disables
	RequestTimeout time.Duration
	IsDevelopment  bool
	MetricsHandler http.Handler // nil uses the default Prometheus registry
}

// NewRouter builds the HTTP API. Synchronization and hook routes run
// without the request timeout since a run may take minutes.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	metrics := cfg.MetricsHandler
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))

	r.Get("/health", h.Health.Health)
	r.Get("/health/live", h.Health.Liveness)

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.NewRateLimiter(cfg.RateLimit, 0).Middleware())
		}
		r.Use(middleware.APIToken(cfg.APIToken))

		r.Handle("/metrics", metrics)

		r.Route("/api", func(r chi.Router) {
			r.Post("/sync/export", h.Sync.Export)
			r.Post("/sync/export/{collection}", h.Sync.ExportCollection)
			r.Post("/sync/import", h.Sync.Import)
			r.Post("/hooks/{event}", h.Sync.Hook)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(cfg.RequestTimeout))

				r.Get("/settings", h.Config.GetSettings)
				r.Put("/settings", h.Config.UpdateSettings)
				r.Get("/content-transfer-setup", h.Config.GetContentTransferSetup)
				r.Put("/content-transfer-setup", h.Config.UpdateContentTransferSetup)
				r.Get("/localazy-data", h.Config.GetLocalazyData)
				r.Put("/localazy-data", h.Config.UpdateLocalazyData)
				r.Post("/mappings/validate", h.Config.ValidateMappings)
				r.Get("/languages/catalog", h.Config.LanguageCatalog)

				r.Get("/errors", h.Errors.List)
				r.Delete("/errors", h.Errors.Clear)

				if h.Events != nil {
					r.Get("/events", h.Events.List)
				}

				if h.Scheduler != nil {
					r.Get("/scheduler/jobs", h.Scheduler.List)
					r.Post("/scheduler/jobs/{source}/{name}/trigger", h.Scheduler.TriggerNow)
					r.Put("/scheduler/jobs/{source}/{name}/schedule", h.Scheduler.UpdateSchedule)
					r.Delete("/scheduler/jobs/{source}/{name}/schedule", h.Scheduler.ResetSchedule)
				}
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
