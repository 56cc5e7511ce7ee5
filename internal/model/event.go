// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryExport      = "export"
	EventCategoryImport      = "import"
	EventCategoryDeprecation = "deprecation"
	EventCategoryLanguages   = "languages"
	EventCategoryConfig      = "config"
	EventCategoryThrottle    = "throttle"
	EventCategorySystem      = "system"
)

// Event is an entry of the synchronization event log.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"` // JSON string
	CreatedAt time.Time `json:"created_at"`
}
