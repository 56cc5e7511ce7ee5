// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package hook dispatches content-store mutation events to registered handlers.
package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Event names emitted by the content store.
const (
	SettingsCreate     = "settings.create"
	SettingsUpdate     = "settings.update"
	SettingsDelete     = "settings.delete"
	TranslationsCreate = "translations.create"
	TranslationsUpdate = "translations.update"
	TranslationsDelete = "translations.delete"
	ItemsCreate        = "items.create"
	ItemsUpdate        = "items.update"
	ItemsDelete        = "items.delete"
)

// Names lists every known event name.
var Names = []string{
	SettingsCreate, SettingsUpdate, SettingsDelete,
	TranslationsCreate, TranslationsUpdate, TranslationsDelete,
	ItemsCreate, ItemsUpdate, ItemsDelete,
}

// ErrUnknownEvent is returned by Dispatch for an unrecognized event name.
var ErrUnknownEvent = errors.New("unknown hook event")

// Event is a content-store mutation.
type Event struct {
	Name       string   `json:"event"`
	Collection string   `json:"collection,omitempty"`
	Keys       []string `json:"keys,omitempty"`
}

// IsDelete reports whether the event removes records.
func (e Event) IsDelete() bool {
	return strings.HasSuffix(e.Name, ".delete")
}

// Func handles an event.
type Func func(ctx context.Context, ev Event) error

// Handler wraps a Func with metadata.
type Handler struct {
	Name     string // Name of the handler for debugging
	Priority int    // Lower priority runs first
	// BestEffort handlers never fail the dispatch; their errors are
	// logged at WARN and execution continues.
	BestEffort bool
	Fn         Func
}

// Registry manages handler registration and dispatch.
type Registry struct {
	mu     sync.RWMutex
	hooks  map[string][]Handler
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		hooks:  make(map[string][]Handler),
		logger: logger,
	}
}

// Register adds a handler for event. Handlers with equal priority run in
// registration order.
func (r *Registry) Register(event string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append(r.hooks[event], h)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority < handlers[j].Priority
	})
	r.hooks[event] = handlers

	r.logger.Debug("hook registered", "hook", event, "handler", h.Name, "best_effort", h.BestEffort)
}

// RegisterFunc registers fn with default priority.
func (r *Registry) RegisterFunc(event, name string, fn Func) {
	r.Register(event, Handler{Name: name, Fn: fn})
}

// Dispatch runs the handlers of ev.Name in priority order. The first error
// of a handler that is not best-effort stops execution.
func (r *Registry) Dispatch(ctx context.Context, ev Event) error {
	if !slices.Contains(Names, ev.Name) {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Name)
	}

	r.mu.RLock()
	handlers := slices.Clone(r.hooks[ev.Name])
	r.mu.RUnlock()

	for _, h := range handlers {
		err := h.Fn(ctx, ev)
		if err == nil {
			continue
		}
		if h.BestEffort {
			r.logger.Warn("best-effort hook handler failed",
				"hook", ev.Name,
				"handler", h.Name,
				"collection", ev.Collection,
				"error", err,
			)
			continue
		}
		r.logger.Error("hook handler error", "hook", ev.Name, "handler", h.Name, "error", err)
		return fmt.Errorf("hook %s handler %s: %w", ev.Name, h.Name, err)
	}
	return nil
}

// HandlerCount returns the number of handlers registered for event.
func (r *Registry) HandlerCount(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[event])
}

// Info describes the handlers of one event.
type Info struct {
	Event    string   `json:"event"`
	Handlers []string `json:"handlers"`
}

// List returns the registered handlers sorted by event name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.hooks))
	for name, handlers := range r.hooks {
		info := Info{Event: name}
		for _, h := range handlers {
			info.Handlers = append(info.Handlers, h.Name)
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Event < infos[j].Event })
	return infos
}
