// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of an invocation.
type Status string

// Invocation outcomes.
const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Operation names used in reports, metrics and tracked errors.
const (
	OpExport           = "export"
	OpExportCollection = "export_collection"
	OpExportStrings    = "export_translation_strings"
	OpImport           = "import"
	OpDeprecateItems   = "deprecate_items"
	OpDeprecateStrings = "deprecate_translation_strings"
	OpResolveLanguages = "resolve_languages"
	OpCreateLanguages  = "create_missing_languages"
	OpFetchContent     = "fetch_content"
	OpWriteBack        = "write_back"
	OpUpsertStrings    = "upsert_translation_strings"
	OpFetchStrings     = "fetch_translation_strings"
	OpDeprecateKeys    = "deprecate_keys"
	OpUploadContent    = "upload_content"
)

// Report summarizes one invocation.
type Report struct {
	RunID     string        `json:"run_id"`
	Operation string        `json:"operation"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Languages        []string `json:"languages,omitempty"`
	LanguagesCreated []string `json:"languages_created,omitempty"`
	Collections      []string `json:"collections,omitempty"`

	ChunksUploaded  int `json:"chunks_uploaded"`
	KeysExported    int `json:"keys_exported"`
	KeysFetched     int `json:"keys_fetched"`
	ItemsUpdated    int `json:"items_updated"`
	ItemsSkipped    int `json:"items_skipped"`
	StringsUpserted int `json:"strings_upserted"`

	Deprecation *DeprecationReport `json:"deprecation,omitempty"`

	Errors []string `json:"errors,omitempty"`

	mu sync.Mutex
}

// DeprecationReport counts deprecated remote keys.
type DeprecationReport struct {
	Candidates int `json:"candidates"`
	Deprecated int `json:"deprecated"`
	Failed     int `json:"failed"`
}

func newReport(operation string, now time.Time) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Operation: operation,
		StartedAt: now,
	}
}

func (r *Report) addError(err error) {
	r.mu.Lock()
	r.Errors = append(r.Errors, err.Error())
	r.mu.Unlock()
}

func (r *Report) update(fn func(r *Report)) {
	r.mu.Lock()
	fn(r)
	r.mu.Unlock()
}

func (r *Report) fail(err error) {
	r.Status = StatusFailed
	r.Message = err.Error()
}

func (r *Report) skip(message string) {
	r.Status = StatusSkipped
	r.Message = message
}

// work reports whether anything reached either system.
func (r *Report) work() bool {
	return r.ChunksUploaded > 0 || r.ItemsUpdated > 0 || r.StringsUpserted > 0 ||
		len(r.LanguagesCreated) > 0 || (r.Deprecation != nil && r.Deprecation.Deprecated > 0)
}

// settle derives the final status unless one was already set.
func (r *Report) settle(now time.Time) {
	r.Duration = now.Sub(r.StartedAt)
	if r.Status != "" {
		return
	}
	switch {
	case len(r.Errors) == 0:
		r.Status = StatusOK
	case r.work():
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
	if r.Message == "" && len(r.Errors) > 0 {
		r.Message = r.Errors[0]
	}
}
