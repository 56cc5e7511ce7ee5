// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

// CreateMissingLanguages controls whether languages declared by the remote
// project but unknown to the content store are created during import.
type CreateMissingLanguages int

// Modes for creating missing languages.
const (
	CreateMissingNone          CreateMissingLanguages = 0
	CreateMissingAll           CreateMissingLanguages = 1
	CreateMissingOnlyNonHidden CreateMissingLanguages = 2
)

// String returns the mode name used in logs.
func (m CreateMissingLanguages) String() string {
	switch m {
	case CreateMissingNone:
		return "none"
	case CreateMissingAll:
		return "all"
	case CreateMissingOnlyNonHidden:
		return "only_non_hidden"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m CreateMissingLanguages) Valid() bool {
	return m >= CreateMissingNone && m <= CreateMissingOnlyNonHidden
}

// Settings is the persisted synchronization settings record.
type Settings struct {
	LanguageCollection         string                 `json:"language_collection"`
	LanguageCodeField          string                 `json:"language_code_field"`
	SourceLanguage             string                 `json:"source_language"`
	ImportSourceLanguage       bool                   `json:"import_source_language"`
	UploadExistingTranslations bool                   `json:"upload_existing_translations"`
	AutomatedUpload            bool                   `json:"automated_upload"`
	AutomatedDeprecation       bool                   `json:"automated_deprecation"`
	SkipEmptyStrings           bool                   `json:"skip_empty_strings"`
	CreateMissingLanguages     CreateMissingLanguages `json:"create_missing_languages_in_directus"`
	LanguageMappings           string                 `json:"language_mappings"` // JSON array of language mappings
}

// DefaultSettings returns the settings a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		LanguageCollection:     "languages",
		LanguageCodeField:      "code",
		SourceLanguage:         "en",
		AutomatedUpload:        true,
		AutomatedDeprecation:   true,
		SkipEmptyStrings:       true,
		CreateMissingLanguages: CreateMissingOnlyNonHidden,
		LanguageMappings:       "[]",
	}
}

// Validate checks that the settings can drive a synchronization.
func (s Settings) Validate() error {
	var errs []error
	if s.LanguageCollection == "" {
		errs = append(errs, errors.New("language_collection is required"))
	}
	if s.LanguageCodeField == "" {
		errs = append(errs, errors.New("language_code_field is required"))
	}
	if s.SourceLanguage == "" {
		errs = append(errs, errors.New("source_language is required"))
	}
	if !s.CreateMissingLanguages.Valid() {
		errs = append(errs, fmt.Errorf("create_missing_languages_in_directus: invalid mode %d", s.CreateMissingLanguages))
	}
	return errors.Join(errs...)
}

// ContentTransferSetup declares which content participates in synchronization.
type ContentTransferSetup struct {
	EnabledFields      string `json:"enabled_fields"` // JSON array of EnabledField
	TranslationStrings bool   `json:"translation_strings"`
}

// DefaultContentTransferSetup returns an empty setup with translation strings enabled.
func DefaultContentTransferSetup() ContentTransferSetup {
	return ContentTransferSetup{
		EnabledFields:      "[]",
		TranslationStrings: true,
	}
}

// LocalazyData holds the credentials and identifiers of the connected Localazy project.
type LocalazyData struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	OrgID       string `json:"org_id"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	ProjectURL  string `json:"project_url"`
}

// Connected reports whether a project is linked.
func (d LocalazyData) Connected() bool {
	return d.AccessToken != ""
}
