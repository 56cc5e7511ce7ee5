// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/ocms-localazy/internal/cache"
	"github.com/olegiv/ocms-localazy/internal/throttle"
	"github.com/olegiv/ocms-localazy/internal/version"
)

// Pinger checks database connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ThrottleStats reports the state of the request throttler.
type ThrottleStats interface {
	Stats() throttle.Stats
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        Pinger
	throttler ThrottleStats // optional
	cache     cache.Cache   // optional
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger, throttler ThrottleStats, c cache.Cache, info version.Info) *HealthHandler {
	return &HealthHandler{
		db:        db,
		throttler: throttler,
		cache:     c,
		version:   info,
		startTime: time.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Commit    string           `json:"commit,omitempty"`
	Checks    map[string]Check `json:"checks"`
	Throttle  *throttle.Stats  `json:"throttle,omitempty"`
	Cache     *cache.Stats     `json:"cache,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := check(r.Context(), "database unreachable", h.db.PingContext)

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.OrDev(),
		Commit:    h.version.GitCommit,
		Checks:    map[string]Check{"database": dbCheck},
	}
	if h.throttler != nil {
		stats := h.throttler.Stats()
		status.Throttle = &stats
	}
	if p, ok := h.cache.(cache.Pinger); ok {
		status.Checks["cache"] = check(r.Context(), "cache unreachable", p.Ping)
	}
	if sp, ok := h.cache.(cache.StatsProvider); ok {
		stats := sp.Stats()
		status.Cache = &stats
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = systemInfo()
	}

	// Only the database is required; a lost cache degrades without failing.
	code := http.StatusOK
	for _, c := range status.Checks {
		if c.Status != "healthy" {
			status.Status = "degraded"
		}
	}
	if dbCheck.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// check runs ping with a short timeout and reports its latency.
func check(ctx context.Context, failure string, ping func(context.Context) error) Check {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{Status: "unhealthy", Message: failure, Latency: latency.String()}
	}
	return Check{Status: "healthy", Latency: latency.String()}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAllocMB:   m.Alloc / 1024 / 1024,
	}
}
