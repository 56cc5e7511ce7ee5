// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package errtrack records categorized synchronization errors in a bounded
// in-memory buffer and logs them by severity.
package errtrack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"syscall"
	"time"
)

// DefaultCapacity is the number of errors kept before the oldest is evicted.
const DefaultCapacity = 100

// Category classifies an error by its origin.
type Category string

// Error categories.
const (
	CategoryNetwork       Category = "network"
	CategoryValidation    Category = "validation"
	CategoryAPI           Category = "api"
	CategoryConfiguration Category = "configuration"
	CategoryUnknown       Category = "unknown"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryNetwork, CategoryValidation, CategoryAPI, CategoryConfiguration, CategoryUnknown,
}

// Severity ranks an error for triage.
type Severity string

// Error severities.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Sources used in log prefixes.
const (
	SourceStore         = "Store"
	SourceLocalazy      = "Localazy"
	SourceNetwork       = "Network"
	SourceValidation    = "Validation"
	SourceConfiguration = "Configuration"
)

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// Info is a tracked error.
type Info struct {
	Timestamp time.Time      `json:"timestamp"`
	Category  Category       `json:"category"`
	Severity  Severity       `json:"severity"`
	Source    string         `json:"source"`
	Operation string         `json:"type"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// Tracker is a bounded, concurrency-safe error buffer.
type Tracker struct {
	mu       sync.Mutex
	errors   []Info
	capacity int
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a tracker holding at most capacity errors. A non-positive
// capacity selects DefaultCapacity.
func New(logger *slog.Logger, capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// TrackStoreError records a content-store failure.
func (t *Tracker) TrackStoreError(err error, operation string, details map[string]any) {
	t.record(t.classify(err, CategoryAPI, SourceStore, operation, details))
}

// TrackLocalazyError records a Localazy API failure.
func (t *Tracker) TrackLocalazyError(err error, operation string, details map[string]any) {
	t.record(t.classify(err, CategoryAPI, SourceLocalazy, operation, details))
}

// TrackNetworkError records a connection-level failure.
func (t *Tracker) TrackNetworkError(err error, operation string, details map[string]any) {
	t.record(t.classify(err, CategoryNetwork, SourceNetwork, operation, details))
}

// TrackUnknown records an error that fits no other category, such as a
// recovered panic.
func (t *Tracker) TrackUnknown(err error, source, operation string, details map[string]any) {
	t.record(t.classify(err, CategoryUnknown, source, operation, details))
}

// TrackValidation records malformed input that was replaced by a default.
func (t *Tracker) TrackValidation(message, operation string, details map[string]any) {
	t.record(Info{
		Timestamp: t.now(),
		Category:  CategoryValidation,
		Severity:  SeverityMedium,
		Source:    SourceValidation,
		Operation: operation,
		Message:   message,
		Details:   details,
	})
}

// TrackConfiguration records missing or unusable configuration.
func (t *Tracker) TrackConfiguration(message, operation string, details map[string]any) {
	t.record(Info{
		Timestamp: t.now(),
		Category:  CategoryConfiguration,
		Severity:  SeverityHigh,
		Source:    SourceConfiguration,
		Operation: operation,
		Message:   message,
		Details:   details,
	})
}

func (t *Tracker) classify(err error, category Category, src, operation string, details map[string]any) Info {
	info := Info{
		Timestamp: t.now(),
		Category:  category,
		Severity:  SeverityMedium,
		Source:    src,
		Operation: operation,
		Message:   "Unknown error",
	}
	if err != nil {
		info.Message = err.Error()
	}

	merged := make(map[string]any, len(details)+1)
	for k, v := range details {
		merged[k] = v
	}

	var sc StatusCoder
	switch {
	case errors.As(err, &sc) && sc.StatusCode() != 0:
		status := sc.StatusCode()
		merged["status"] = status
		info.Message = fmt.Sprintf("HTTP %d: %s", status, info.Message)
		switch {
		case status >= 500, status == 401, status == 403:
			info.Severity = SeverityHigh
		case status == 429:
			info.Message = "Rate limit exceeded"
		}
	case isConnectionFailure(err):
		info.Severity = SeverityHigh
		info.Category = CategoryNetwork
	}

	if len(merged) > 0 {
		info.Details = merged
	}
	return info
}

// isConnectionFailure reports refused connections and timeouts.
func isConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func (t *Tracker) record(info Info) {
	t.log(info)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors = append(t.errors, info)
	if over := len(t.errors) - t.capacity; over > 0 {
		t.errors = append(t.errors[:0:0], t.errors[over:]...)
	}
}

func (t *Tracker) log(info Info) {
	if t.logger == nil {
		return
	}
	msg := fmt.Sprintf("[Localazy:%s] %s: %s", info.Source, info.Operation, info.Message)
	attrs := []any{"category", string(info.Category), "severity", string(info.Severity)}
	for k, v := range info.Details {
		attrs = append(attrs, k, v)
	}

	switch info.Severity {
	case SeverityCritical, SeverityHigh:
		t.logger.Error(msg, attrs...)
	case SeverityMedium:
		t.logger.Warn(msg, attrs...)
	default:
		t.logger.Info(msg, attrs...)
	}
}

// Errors returns a copy of the tracked errors, oldest first.
func (t *Tracker) Errors() []Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Info(nil), t.errors...)
}

// ByCategory returns the tracked errors of one category.
func (t *Tracker) ByCategory(c Category) []Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Info
	for _, e := range t.errors {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the number of tracked errors per category. Every category
// is present.
func (t *Tracker) Counts() map[Category]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, e := range t.errors {
		counts[e.Category]++
	}
	return counts
}

// Clear drops every tracked error.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors = nil
}
