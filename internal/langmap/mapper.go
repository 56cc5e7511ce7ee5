// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package langmap translates language codes between the content store and
// Localazy. The content store uses BCP 47 style codes (pt-BR, zh-Hans);
// Localazy uses locale identifiers (pt_BR, zh-CN#Hans). Custom mappings
// cover codes a character substitution cannot convert.
package langmap

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// Mapping is a single custom language code mapping.
type Mapping struct {
	DirectusCode string `json:"directusCode"`
	LocalazyCode string `json:"localazyCode"`
	Description  string `json:"description,omitempty"`
}

// Mapper converts codes in both directions. A Mapper is immutable after New
// and safe for concurrent use.
type Mapper struct {
	toRemote map[string]string
	toSource map[string]string
	mappings []Mapping
}

// New builds a Mapper from the persisted JSON mapping list. Malformed JSON
// is logged and produces a Mapper without custom mappings.
func New(mappingsJSON string, logger *slog.Logger) *Mapper {
	m := &Mapper{
		toRemote: make(map[string]string),
		toSource: make(map[string]string),
	}

	if strings.TrimSpace(mappingsJSON) == "" {
		return m
	}

	var mappings []Mapping
	if err := json.Unmarshal([]byte(mappingsJSON), &mappings); err != nil {
		if logger != nil {
			logger.Warn("failed to parse language mappings", "category", "config", "error", err)
		}
		return m
	}

	for _, mp := range mappings {
		// Codes are matched verbatim; only empty ones are skipped.
		if mp.DirectusCode == "" || mp.LocalazyCode == "" {
			continue
		}
		if _, dup := m.toRemote[mp.DirectusCode]; !dup {
			m.mappings = append(m.mappings, Mapping{DirectusCode: mp.DirectusCode, LocalazyCode: mp.LocalazyCode})
		}
		m.toRemote[mp.DirectusCode] = mp.LocalazyCode
		m.toSource[mp.LocalazyCode] = mp.DirectusCode
	}

	return m
}

// ToRemote converts a content-store code to a Localazy code.
// Without a custom mapping the first '-' becomes '_'.
func (m *Mapper) ToRemote(code string) string {
	if remote, ok := m.toRemote[code]; ok {
		return remote
	}
	return strings.Replace(code, "-", "_", 1)
}

// ToSource converts a Localazy code to a content-store code.
// Without a custom mapping the first '_' becomes '-'.
func (m *Mapper) ToSource(code string) string {
	if source, ok := m.toSource[code]; ok {
		return source
	}
	return strings.Replace(code, "_", "-", 1)
}

// HasCustomMapping reports whether code appears on either side of a mapping.
func (m *Mapper) HasCustomMapping(code string) bool {
	_, src := m.toRemote[code]
	_, rem := m.toSource[code]
	return src || rem
}

// RemoteMapping returns the custom Localazy code for a content-store code.
func (m *Mapper) RemoteMapping(code string) (string, bool) {
	remote, ok := m.toRemote[code]
	return remote, ok
}

// SourceMapping returns the custom content-store code for a Localazy code.
func (m *Mapper) SourceMapping(code string) (string, bool) {
	source, ok := m.toSource[code]
	return source, ok
}

// Mappings returns a copy of the configured mappings.
func (m *Mapper) Mappings() []Mapping {
	out := make([]Mapping, 0, len(m.mappings))
	for _, mp := range m.mappings {
		mp.LocalazyCode = m.toRemote[mp.DirectusCode]
		out = append(out, mp)
	}
	return out
}
