// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/ocms-localazy/internal/content"
)

// htmlSanitizer strips scripts, event handlers and other unsafe markup from
// imported rich text while keeping formatting tags.
var htmlSanitizer = bluemonday.UGCPolicy()

// sanitizeGroups returns a copy of groups with markup in values sanitized.
// Values without markup are returned untouched so plain text is never
// entity-escaped.
func sanitizeGroups(groups []content.ItemsInLanguage) []content.ItemsInLanguage {
	out := make([]content.ItemsInLanguage, len(groups))
	for i, g := range groups {
		values := make([]content.FieldValue, len(g.Values))
		for j, v := range g.Values {
			if strings.ContainsRune(v.Value, '<') {
				v.Value = htmlSanitizer.Sanitize(v.Value)
			}
			values[j] = v
		}
		g.Values = values
		out[i] = g
	}
	return out
}
