// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-localazy/internal/cache"
	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/scheduler"
	"github.com/olegiv/ocms-localazy/internal/store"
	"github.com/olegiv/ocms-localazy/internal/version"
)

func TestHealth_IsPublic(t *testing.T) {
	ts := newTestServer(t, 0)

	rr := ts.doWithToken(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "v1.2.3", body["version"])
	assert.Equal(t, "healthy", body["checks"].(map[string]any)["database"].(map[string]any)["status"])
	assert.NotContains(t, body, "system")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = ts.doWithToken(t, http.MethodGet, "/health?verbose=true", nil, "")
	assert.Contains(t, decode(t, rr), "system")

	rr = ts.doWithToken(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealth_DatabaseDown(t *testing.T) {
	ts := newTestServer(t, 0)
	require.NoError(t, ts.store.DB().Close())

	rr := ts.doWithToken(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "degraded", decode(t, rr)["status"])
}

func TestRouter_RequiresToken(t *testing.T) {
	ts := newTestServer(t, 0)

	for _, path := range []string{"/api/settings", "/api/errors", "/metrics"} {
		rr := ts.doWithToken(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)

		rr = ts.doWithToken(t, http.MethodGet, path, nil, "wrong")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := ts.doWithToken(t, http.MethodPost, "/api/sync/export", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, ts.syncer.calls)
}

func TestRouter_RateLimit(t *testing.T) {
	ts := newTestServer(t, 1)

	rr := ts.do(t, http.MethodGet, "/api/errors", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.do(t, http.MethodGet, "/api/errors", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// Health checks are not limited.
	rr = ts.doWithToken(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	ts := newTestServer(t, 0)

	rr := ts.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, false, decode(t, rr)["success"])

	rr = ts.do(t, http.MethodPatch, "/api/settings", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_Metrics(t *testing.T) {
	ts := newTestServer(t, 0)

	rr := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestErrors_ListFilterAndClear(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.tracker.TrackConfiguration("localazy data not found", "export", nil)
	ts.tracker.TrackStoreError(errors.New("db locked"), "import", nil)

	rr := ts.do(t, http.MethodGet, "/api/errors", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Len(t, body["errors"], 2)
	counts := body["counts"].(map[string]any)
	assert.Equal(t, float64(1), counts["configuration"])
	assert.Equal(t, float64(1), counts["api"])
	assert.Equal(t, float64(0), counts["network"])

	rr = ts.do(t, http.MethodGet, "/api/errors?category=configuration", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	filtered := decode(t, rr)["errors"].([]any)
	require.Len(t, filtered, 1)
	assert.Equal(t, "configuration", filtered[0].(map[string]any)["category"])

	rr = ts.do(t, http.MethodGet, "/api/errors?category=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodDelete, "/api/errors", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, ts.tracker.Errors())

	rr = ts.do(t, http.MethodGet, "/api/errors", nil)
	assert.Equal(t, []any{}, decode(t, rr)["errors"])
}

func TestEvents_ListPaginated(t *testing.T) {
	ts := newTestServer(t, 0)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 3 {
		_, err := ts.store.CreateEvent(ctx, store.CreateEventParams{
			Level:     model.EventLevelWarning,
			Category:  model.EventCategoryExport,
			Message:   fmt.Sprintf("export %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := ts.store.CreateEvent(ctx, store.CreateEventParams{
		Level: model.EventLevelError, Category: model.EventCategoryImport, Message: "import", CreatedAt: base,
	})
	require.NoError(t, err)

	rr := ts.do(t, http.MethodGet, "/api/events?category=export&per_page=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	events := decode(t, rr)["events"].([]any)
	require.Len(t, events, 2)
	assert.Equal(t, "export 2", events[0].(map[string]any)["message"])

	rr = ts.do(t, http.MethodGet, "/api/events?category=export&per_page=2&page=2", nil)
	events = decode(t, rr)["events"].([]any)
	require.Len(t, events, 1)
	assert.Equal(t, "export 0", events[0].(map[string]any)["message"])

	rr = ts.do(t, http.MethodGet, "/api/events?page=-1", nil)
	body := decode(t, rr)
	assert.Len(t, body["events"], 4)
	assert.Equal(t, float64(1), body["page"])
}

func TestParsePositiveInt(t *testing.T) {
	assert.Equal(t, 5, parsePositiveInt("5", 1))
	assert.Equal(t, 1, parsePositiveInt("", 1))
	assert.Equal(t, 1, parsePositiveInt("0", 1))
	assert.Equal(t, 1, parsePositiveInt("x", 1))
}

func TestScheduler_Routes(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.jobs.jobs = []scheduler.JobInfo{{Source: scheduler.SourceSync, Name: scheduler.JobImport, Schedule: "@hourly", CanTrigger: true}}

	rr := ts.do(t, http.MethodGet, "/api/scheduler/jobs", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	jobs := decode(t, rr)["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "import", jobs[0].(map[string]any)["name"])

	rr = ts.do(t, http.MethodPost, "/api/scheduler/jobs/sync/import/trigger", nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "trigger sync:import", ts.jobs.last)

	rr = ts.do(t, http.MethodPut, "/api/scheduler/jobs/sync/import/schedule", map[string]string{"schedule": " */5 * * * * "})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "update sync:import */5 * * * *", ts.jobs.last)

	rr = ts.do(t, http.MethodPut, "/api/scheduler/jobs/sync/import/schedule", map[string]string{"schedule": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodDelete, "/api/scheduler/jobs/sync/import/schedule", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "reset sync:import", ts.jobs.last)
}

func TestScheduler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: sync:x", scheduler.ErrJobNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: sync:import", scheduler.ErrTriggerRateLimited), http.StatusTooManyRequests},
		{scheduler.ErrJobRunning, http.StatusConflict},
		{fmt.Errorf("%w: core:event_cleanup", scheduler.ErrTriggerUnavailable), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ts := newTestServer(t, 0)
			ts.jobs.err = tt.err
			rr := ts.do(t, http.MethodPost, "/api/scheduler/jobs/sync/import/trigger", nil)
			assert.Equal(t, tt.want, rr.Code)
			assert.Equal(t, tt.err.Error(), decode(t, rr)["error"])
		})
	}
}

// downCache is a memory cache whose server is unreachable.
type downCache struct {
	*cache.MemoryCache
}

func (downCache) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_CacheDownIsDegradedNotFailed(t *testing.T) {
	ts := newTestServer(t, 0)
	c := downCache{cache.NewMemoryCache(cache.MemoryCacheOptions{})}
	h := NewHealthHandler(ts.store.DB(), nil, c, version.Info{})

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "dev", body["version"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "unhealthy", checks["cache"].(map[string]any)["status"])
	assert.Equal(t, "memory", body["cache"].(map[string]any)["backend"])
}
