// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-localazy/internal/errtrack"
	"github.com/olegiv/ocms-localazy/internal/hook"
	"github.com/olegiv/ocms-localazy/internal/scheduler"
	"github.com/olegiv/ocms-localazy/internal/store"
	"github.com/olegiv/ocms-localazy/internal/syncer"
	"github.com/olegiv/ocms-localazy/internal/testutil"
	"github.com/olegiv/ocms-localazy/internal/version"
)

const testToken = "handler-test-Token-0123456789"

// fakeSyncer returns canned reports and records calls.
type fakeSyncer struct {
	mu     sync.Mutex
	report *syncer.Report
	err    error
	calls  []string
	ids    []string
}

func (f *fakeSyncer) result(call string) (*syncer.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	report := f.report
	if report == nil {
		report = &syncer.Report{Operation: call, Status: syncer.StatusOK}
	}
	return report, f.err
}

func (f *fakeSyncer) ExportAll(context.Context) (*syncer.Report, error) {
	return f.result(syncer.OpExport)
}

func (f *fakeSyncer) ExportCollectionItems(_ context.Context, collection string, ids []string) (*syncer.Report, error) {
	f.mu.Lock()
	f.ids = ids
	f.mu.Unlock()
	return f.result(syncer.OpExportCollection + ":" + collection)
}

func (f *fakeSyncer) Import(context.Context) (*syncer.Report, error) {
	return f.result(syncer.OpImport)
}

// fakeInvalidator counts cache invalidations.
type fakeInvalidator struct {
	projects int
	schemas  int
}

func (f *fakeInvalidator) InvalidateProject(context.Context) error {
	f.projects++
	return nil
}

func (f *fakeInvalidator) InvalidateSchemas(context.Context) error {
	f.schemas++
	return nil
}

// fakeJobs is a JobRegistry returning a fixed error.
type fakeJobs struct {
	jobs []scheduler.JobInfo
	err  error
	last string
}

func (f *fakeJobs) List() []scheduler.JobInfo { return f.jobs }

func (f *fakeJobs) TriggerNow(source, name string) error {
	f.last = "trigger " + source + ":" + name
	return f.err
}

func (f *fakeJobs) UpdateSchedule(source, name, schedule string) error {
	f.last = "update " + source + ":" + name + " " + schedule
	return f.err
}

func (f *fakeJobs) ResetSchedule(source, name string) error {
	f.last = "reset " + source + ":" + name
	return f.err
}

type testServer struct {
	router  http.Handler
	store   *store.Store
	syncer  *fakeSyncer
	caches  *fakeInvalidator
	tracker *errtrack.Tracker
	jobs    *fakeJobs
	events  []hook.Event
}

func newTestServer(t *testing.T, rateLimit float64) *testServer {
	t.Helper()
	logger := testutil.TestLoggerSilent()

	ts := &testServer{
		store:   testutil.TestStore(t),
		syncer:  &fakeSyncer{},
		caches:  &fakeInvalidator{},
		tracker: errtrack.New(logger, 10),
		jobs:    &fakeJobs{},
	}

	hooks := hook.NewRegistry(logger)
	for _, name := range hook.Names {
		hooks.RegisterFunc(name, "record", func(_ context.Context, ev hook.Event) error {
			ts.events = append(ts.events, ev)
			if ev.Collection == "unconfigured" {
				return syncer.ErrMissingConfiguration
			}
			return nil
		})
	}

	ts.router = NewRouter(Handlers{
		Health:    NewHealthHandler(ts.store.DB(), nil, nil, version.Info{Version: "v1.2.3"}),
		Sync:      NewSyncHandler(ts.syncer, hooks, logger),
		Config:    NewConfigHandler(ts.store, ts.caches, nil, logger),
		Errors:    NewErrorsHandler(ts.tracker),
		Events:    NewEventsHandler(ts.store),
		Scheduler: NewSchedulerHandler(ts.jobs, logger),
	}, RouterConfig{APIToken: testToken, RateLimit: rateLimit})
	return ts
}

// do sends an authenticated request with an optional JSON body.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return ts.doWithToken(t, method, path, body, testToken)
}

func (ts *testServer) doWithToken(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:4321"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if buf.Len() > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

// decode parses a JSON object response.
func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
