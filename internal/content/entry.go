// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content converts content-store records to the nested key/value
// documents uploaded to Localazy and back.
package content

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MetaPrefix marks a metadata sibling of a value key.
const MetaPrefix = "@"

// TranslationStringsCollection is the first path segment of free-standing
// translation strings.
const TranslationStringsCollection = "translation_strings"

// Entry is a nested key/value document. Leaves are strings or metadata
// objects stored under MetaPrefix keys.
type Entry = map[string]any

// TranslatableContent holds the documents of one export, split by language.
type TranslatableContent struct {
	SourceLanguage Entry            `json:"sourceLanguage"`
	OtherLanguages map[string]Entry `json:"otherLanguages"`
}

// NewTranslatableContent returns empty content.
func NewTranslatableContent() TranslatableContent {
	return TranslatableContent{
		SourceLanguage: Entry{},
		OtherLanguages: map[string]Entry{},
	}
}

// Merge deep-merges o into c.
func (c *TranslatableContent) Merge(o TranslatableContent) {
	if c.SourceLanguage == nil {
		c.SourceLanguage = Entry{}
	}
	if c.OtherLanguages == nil {
		c.OtherLanguages = map[string]Entry{}
	}
	Merge(c.SourceLanguage, o.SourceLanguage)
	for lang, e := range o.OtherLanguages {
		c.OtherLanguages[lang] = Merge(c.OtherLanguages[lang], e)
	}
}

// Empty reports whether no language carries any key.
func (c TranslatableContent) Empty() bool {
	if len(c.SourceLanguage) > 0 {
		return false
	}
	for _, e := range c.OtherLanguages {
		if len(e) > 0 {
			return false
		}
	}
	return true
}

// Languages returns the non-source languages in sorted order.
func (c TranslatableContent) Languages() []string {
	langs := make([]string, 0, len(c.OtherLanguages))
	for lang, e := range c.OtherLanguages {
		if len(e) > 0 {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// Merge deep-merges src into dst and returns dst, allocating it when nil.
// Nested objects are merged key by key, arrays are concatenated and any
// other value overwrites the destination.
func Merge(dst, src Entry) Entry {
	if dst == nil {
		dst = Entry{}
	}
	for k, sv := range src {
		if d, ok := dst[k].([]any); ok {
			if s, ok := sv.([]any); ok {
				dst[k] = append(d[:len(d):len(d)], s...)
			} else {
				dst[k] = append(d[:len(d):len(d)], sv)
			}
			continue
		}
		switch s := sv.(type) {
		case map[string]any:
			d, _ := dst[k].(map[string]any)
			dst[k] = Merge(d, s)
		case []any:
			dst[k] = append([]any(nil), s...)
		default:
			dst[k] = sv
		}
	}
	return dst
}

// CountValues returns the number of value leaves in e, ignoring metadata.
func CountValues(e Entry) int {
	n := 0
	for k, v := range e {
		if IsMetaKey(k) {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			n += CountValues(m)
			continue
		}
		n++
	}
	return n
}

// IsMetaKey reports whether k is a metadata key.
func IsMetaKey(k string) bool {
	return strings.HasPrefix(k, MetaPrefix)
}

// ItemID renders a record id as a path segment.
func ItemID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

func stringValue(v any) string {
	if !truthy(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
