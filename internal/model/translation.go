// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "sort"

// TranslationStringRow is one row of the dedicated translation strings table.
type TranslationStringRow struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Language string `json:"language"`
	Value    string `json:"value"`
}

// TranslationString is a free-standing string with its values per language.
type TranslationString struct {
	ID           string            `json:"id"`
	Key          string            `json:"key"`
	Translations map[string]string `json:"translations"`
}

// GroupTranslationStrings normalizes table rows into one entry per key.
// The entry id is the id of the first row seen for the key.
func GroupTranslationStrings(rows []TranslationStringRow) []TranslationString {
	index := make(map[string]int)
	var out []TranslationString
	for _, r := range rows {
		i, ok := index[r.Key]
		if !ok {
			i = len(out)
			index[r.Key] = i
			out = append(out, TranslationString{ID: r.ID, Key: r.Key, Translations: map[string]string{}})
		}
		out[i].Translations[r.Language] = r.Value
	}
	return out
}

// SortTranslationStrings orders strings by key.
func SortTranslationStrings(s []TranslationString) {
	sort.Slice(s, func(i, j int) bool { return s[i].Key < s[j].Key })
}
