// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"slices"
	"strings"
)

// EnabledField declares which fields of a collection are synchronized.
type EnabledField struct {
	Collection string   `json:"collection"`
	Fields     []string `json:"fields"`
}

// ParseEnabledFields decodes the persisted JSON text.
// Empty or invalid input yields an empty list.
func ParseEnabledFields(text string) []EnabledField {
	if strings.TrimSpace(text) == "" {
		return []EnabledField{}
	}
	var fields []EnabledField
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return []EnabledField{}
	}
	return fields
}

// PrepareEnabledFields encodes v for persistence. Anything other than a
// list of enabled fields is stored as an empty list.
func PrepareEnabledFields(v any) string {
	fields, ok := v.([]EnabledField)
	if !ok || fields == nil {
		return "[]"
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// FieldsFor returns the enabled fields of collection, or nil.
func FieldsFor(enabled []EnabledField, collection string) []string {
	var out []string
	for _, ef := range enabled {
		if ef.Collection != collection {
			continue
		}
		for _, f := range ef.Fields {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

// EnabledCollections returns the collections with at least one enabled field,
// in declaration order.
func EnabledCollections(enabled []EnabledField) []string {
	var out []string
	for _, ef := range enabled {
		if len(ef.Fields) == 0 || slices.Contains(out, ef.Collection) {
			continue
		}
		out = append(out, ef.Collection)
	}
	return out
}
