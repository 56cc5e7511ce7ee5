// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// SyncLanguage is one language participating in an import, in all the
// forms the two systems know it by.
type SyncLanguage struct {
	OriginalForm string `json:"original_form"` // code as first discovered
	DirectusForm string `json:"directus_form"` // code in the content store
	LocalazyForm string `json:"localazy_form"` // code in the Localazy project
}

// LanguageCodes extracts the content-store codes of languages.
func LanguageCodes(languages []SyncLanguage) []string {
	codes := make([]string, 0, len(languages))
	for _, l := range languages {
		codes = append(codes, l.DirectusForm)
	}
	return codes
}
