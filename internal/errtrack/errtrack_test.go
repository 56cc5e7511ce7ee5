// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package errtrack

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusError struct{ status int }

func (e statusError) Error() string   { return "request failed" }
func (e statusError) StatusCode() int { return e.status }

func newTestTracker(capacity int) (*Tracker, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger, capacity), &buf
}

func TestTrackLocalazyError_SeverityByStatus(t *testing.T) {
	tests := []struct {
		status   int
		severity Severity
		message  string
	}{
		{500, SeverityHigh, "HTTP 500: listing files: request failed"},
		{503, SeverityHigh, "HTTP 503: listing files: request failed"},
		{401, SeverityHigh, "HTTP 401: listing files: request failed"},
		{403, SeverityHigh, "HTTP 403: listing files: request failed"},
		{429, SeverityMedium, "Rate limit exceeded"},
		{404, SeverityMedium, "HTTP 404: listing files: request failed"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			tr, _ := newTestTracker(0)
			tr.TrackLocalazyError(fmt.Errorf("listing files: %w", statusError{tt.status}), "listFiles", nil)

			errs := tr.Errors()
			require.Len(t, errs, 1)
			assert.Equal(t, CategoryAPI, errs[0].Category)
			assert.Equal(t, tt.severity, errs[0].Severity)
			assert.Equal(t, tt.message, errs[0].Message)
			assert.Equal(t, tt.status, errs[0].Details["status"])
		})
	}
}

func TestTrackLocalazyError_ConnectionFailure(t *testing.T) {
	tr, _ := newTestTracker(0)
	err := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	tr.TrackLocalazyError(err, "listProjects", map[string]any{"project": "p1"})

	got := tr.Errors()[0]
	assert.Equal(t, CategoryNetwork, got.Category)
	assert.Equal(t, SeverityHigh, got.Severity)
	assert.Equal(t, "p1", got.Details["project"])
}

func TestTrackStoreError_PlainError(t *testing.T) {
	tr, _ := newTestTracker(0)
	tr.TrackStoreError(errors.New("boom"), "fetchItems", nil)

	got := tr.Errors()[0]
	assert.Equal(t, CategoryAPI, got.Category)
	assert.Equal(t, SeverityMedium, got.Severity)
	assert.Equal(t, "boom", got.Message)
	assert.Nil(t, got.Details)
}

func TestTracker_RingBufferEvictsOldest(t *testing.T) {
	tr, _ := newTestTracker(0)
	for i := range DefaultCapacity + 5 {
		tr.TrackValidation(fmt.Sprintf("bad %d", i), "parse", nil)
	}

	errs := tr.Errors()
	require.Len(t, errs, DefaultCapacity)
	assert.Equal(t, "bad 5", errs[0].Message)
	assert.Equal(t, fmt.Sprintf("bad %d", DefaultCapacity+4), errs[len(errs)-1].Message)
}

func TestTracker_CountsAndClear(t *testing.T) {
	tr, _ := newTestTracker(10)
	tr.TrackConfiguration("settings missing", "loadInvocation", nil)
	tr.TrackValidation("bad mappings", "parseMappings", nil)
	tr.TrackValidation("bad fields", "parseEnabledFields", nil)
	tr.TrackUnknown(errors.New("panic"), SourceLocalazy, "export", nil)

	counts := tr.Counts()
	assert.Equal(t, 1, counts[CategoryConfiguration])
	assert.Equal(t, 2, counts[CategoryValidation])
	assert.Equal(t, 1, counts[CategoryUnknown])
	assert.Equal(t, 0, counts[CategoryNetwork])
	assert.Len(t, counts, len(Categories))

	assert.Len(t, tr.ByCategory(CategoryValidation), 2)
	assert.Equal(t, SeverityHigh, tr.ByCategory(CategoryConfiguration)[0].Severity)

	tr.Clear()
	assert.Empty(t, tr.Errors())
}

func TestTracker_LogsWithSourcePrefix(t *testing.T) {
	tr, buf := newTestTracker(0)
	tr.TrackConfiguration("settings missing", "loadInvocation", nil)
	tr.TrackValidation("bad mappings", "parseMappings", nil)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "[Localazy:Configuration] loadInvocation: settings missing")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "[Localazy:Validation] parseMappings: bad mappings")
}
