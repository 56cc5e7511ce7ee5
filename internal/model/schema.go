// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Field special types.
const (
	SpecialTranslations = "translations"
)

// Field describes a field of a collection.
type Field struct {
	Collection string `json:"collection"`
	Field      string `json:"field"`
	Type       string `json:"type"`
	Special    string `json:"special,omitempty"`
	MaxLength  *int   `json:"max_length,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// IsTranslations reports whether the field is a translations relation.
func (f Field) IsTranslations() bool {
	return f.Special == SpecialTranslations
}

// Relation describes a relation between two collections. For a translations
// field the relation runs from the junction collection to the parent
// collection, and JunctionField names the language foreign key.
type Relation struct {
	Collection        string `json:"collection"`
	Field             string `json:"field"`
	RelatedCollection string `json:"related_collection"`
	OneField          string `json:"one_field,omitempty"`
	JunctionField     string `json:"junction_field,omitempty"`
}

// Item is a content-store record.
type Item = map[string]any
