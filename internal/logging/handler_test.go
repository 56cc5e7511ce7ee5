// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/store"
	"github.com/olegiv/ocms-localazy/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func newTestLogger(t *testing.T) (*slog.Logger, *store.Store) {
	t.Helper()
	s := testutil.TestStore(t)
	return slog.New(NewEventLogHandler(discardHandler{}, s)), s
}

func listEvents(t *testing.T, s *store.Store) []model.Event {
	t.Helper()
	events, err := s.ListEvents(context.Background(), store.ListEventsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func decodeMetadata(t *testing.T, e model.Event) map[string]string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &m); err != nil {
		t.Fatalf("metadata %q is not valid JSON: %v", e.Metadata, err)
	}
	return m
}

func TestEventLogHandler_ErrorLevel(t *testing.T) {
	logger, s := newTestLogger(t)

	logger.Error("upload failed", "category", "export", "language", "de", "status", 502)

	events := listEvents(t, s)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Level != model.EventLevelError {
		t.Errorf("Level = %q, want %q", e.Level, model.EventLevelError)
	}
	if e.Category != model.EventCategoryExport {
		t.Errorf("Category = %q, want %q", e.Category, model.EventCategoryExport)
	}
	if e.Message != "upload failed" {
		t.Errorf("Message = %q, want %q", e.Message, "upload failed")
	}
	meta := decodeMetadata(t, e)
	if meta["language"] != "de" || meta["status"] != "502" {
		t.Errorf("Metadata = %v, want language=de status=502", meta)
	}
	if _, ok := meta["category"]; ok {
		t.Error("category should not be repeated in metadata")
	}
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  int
	}{
		{slog.LevelDebug, 0},
		{slog.LevelInfo, 0},
		{slog.LevelWarn, 1},
		{slog.LevelError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			logger, s := newTestLogger(t)
			logger.Log(context.Background(), tt.level, "message")
			if got := len(listEvents(t, s)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	s := testutil.TestStore(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, s, slog.LevelInfo))

	logger.Info("scheduled import finished")

	events := listEvents(t, s)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Level != model.EventLevelInfo {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelInfo)
	}
	if events[0].Category != model.EventCategoryImport {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryImport)
	}
}

func TestCategoryInference(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"deprecating removed keys failed", model.EventCategoryDeprecation},
		{"import of de failed", model.EventCategoryImport},
		{"export chunk rejected", model.EventCategoryExport},
		{"upload failed", model.EventCategoryExport},
		{"creating missing language failed", model.EventCategoryLanguages},
		{"throttled request cancelled", model.EventCategoryThrottle},
		{"API rate limit exceeded", model.EventCategoryThrottle},
		{"invalid settings", model.EventCategoryConfig},
		{"something else", model.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := category(tt.message, nil); got != tt.want {
				t.Errorf("category(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_WithAttrs(t *testing.T) {
	logger, s := newTestLogger(t)

	logger.With("category", "import", "run_id", "r1").Warn("key listing failed", "language", "fr")

	events := listEvents(t, s)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Category != model.EventCategoryImport {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryImport)
	}
	meta := decodeMetadata(t, events[0])
	if meta["run_id"] != "r1" || meta["language"] != "fr" {
		t.Errorf("Metadata = %v, want run_id and language", meta)
	}
}

func TestEventLogHandler_WithGroup(t *testing.T) {
	logger, s := newTestLogger(t)

	logger.WithGroup("localazy").Error("request failed", "status", 500)

	events := listEvents(t, s)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	meta := decodeMetadata(t, events[0])
	if meta["localazy.status"] != "500" {
		t.Errorf("Metadata = %v, want localazy.status=500", meta)
	}
}

func TestEventLogHandler_SpecialCharactersInMetadata(t *testing.T) {
	logger, s := newTestLogger(t)

	logger.Warn("bad value", "value", "quote\" backslash\\ newline\n")

	meta := decodeMetadata(t, listEvents(t, s)[0])
	if meta["value"] != "quote\" backslash\\ newline\n" {
		t.Errorf("value = %q", meta["value"])
	}
}

func TestEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, model.EventLevelInfo},
		{slog.LevelInfo, model.EventLevelInfo},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelError, model.EventLevelError},
		{slog.LevelError + 4, model.EventLevelError},
	}
	for _, tt := range tests {
		if got := eventLevel(tt.level); got != tt.want {
			t.Errorf("eventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestMetadata_Empty(t *testing.T) {
	if got := metadata(nil); got != "{}" {
		t.Errorf("metadata(nil) = %q, want {}", got)
	}
	if got := metadata([]slog.Attr{slog.String("category", "export")}); got != "{}" {
		t.Errorf("metadata(category only) = %q, want {}", got)
	}
}
