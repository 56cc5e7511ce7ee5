// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

type languageRefKind int

const (
	refNone languageRefKind = iota
	refInline
	refExpanded
)

// LanguageRef is the language of a translation row: either the foreign key
// value itself (Inline) or the expanded language record (Expanded).
type LanguageRef struct {
	kind   languageRefKind
	code   string
	record map[string]any
}

// Inline returns a reference holding a language code.
func Inline(code string) LanguageRef {
	return LanguageRef{kind: refInline, code: code}
}

// Expanded returns a reference holding a language record.
func Expanded(record map[string]any) LanguageRef {
	return LanguageRef{kind: refExpanded, record: record}
}

// LanguageRefOf classifies a decoded field value.
func LanguageRefOf(v any) (LanguageRef, bool) {
	switch t := v.(type) {
	case string:
		return Inline(t), true
	case map[string]any:
		return Expanded(t), true
	default:
		return LanguageRef{}, false
	}
}

// IsExpanded reports whether the reference holds a record.
func (r LanguageRef) IsExpanded() bool {
	return r.kind == refExpanded
}

// ResolveLanguage extracts the language code. For expanded records the
// code is read from codeField.
func ResolveLanguage(r LanguageRef, codeField string) (string, bool) {
	switch r.kind {
	case refInline:
		return r.code, r.code != ""
	case refExpanded:
		code, ok := r.record[codeField].(string)
		return code, ok && code != ""
	default:
		return "", false
	}
}
