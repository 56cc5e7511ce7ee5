// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that forwards logs at WARN and
// above to the sync event log.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/store"
)

// writeTimeout bounds a single event log insert.
const writeTimeout = 2 * time.Second

// EventWriter persists event log entries.
type EventWriter interface {
	CreateEvent(ctx context.Context, arg store.CreateEventParams) (model.Event, error)
}

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// records at or above its level to the event log.
type EventLogHandler struct {
	inner  slog.Handler
	events EventWriter
	level  slog.Level // Minimum level to forward to the event log (default: WARN)
	attrs  []slog.Attr
	group  string
}

// NewEventLogHandler creates an EventLogHandler forwarding WARN and above.
func NewEventLogHandler(inner slog.Handler, events EventWriter) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, events, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, events EventWriter, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:  inner,
		events: events,
		level:  level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	clone.group = h.prefix() + name
	return &clone
}

func (h *EventLogHandler) prefix() string {
	if h.group == "" {
		return ""
	}
	return h.group + "."
}

// qualify prefixes attribute keys with the open group.
func (h *EventLogHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.prefix() + a.Key, Value: a.Value}
	}
	return out
}

// writeToEventLog writes a log record to the event log. The request context
// is not used so the entry survives a cancelled request.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify([]slog.Attr{a})...)
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_, _ = h.events.CreateEvent(ctx, store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category(r.Message, attrs),
		Message:   r.Message,
		Metadata:  metadata(attrs),
		CreatedAt: r.Time,
	})
}

// eventLevel converts a slog.Level to an event log level.
func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// category returns the "category" attribute, or infers one from the message.
// The last category attribute wins.
func category(message string, attrs []slog.Attr) string {
	var c string
	for _, a := range attrs {
		if a.Key == "category" {
			c = a.Value.String()
		}
	}
	if c != "" {
		return c
	}

	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "deprecat"):
		return model.EventCategoryDeprecation
	case strings.Contains(msg, "import"):
		return model.EventCategoryImport
	case strings.Contains(msg, "export") || strings.Contains(msg, "upload"):
		return model.EventCategoryExport
	case strings.Contains(msg, "language"):
		return model.EventCategoryLanguages
	case strings.Contains(msg, "throttl") || strings.Contains(msg, "rate limit"):
		return model.EventCategoryThrottle
	case strings.Contains(msg, "config") || strings.Contains(msg, "setting"):
		return model.EventCategoryConfig
	default:
		return model.EventCategorySystem
	}
}

// metadata encodes the attributes, except category, as a JSON object.
func metadata(attrs []slog.Attr) string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		m[a.Key] = a.Value.Resolve().String()
	}
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
