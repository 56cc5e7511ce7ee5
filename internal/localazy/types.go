// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localazy

// FileName is the remote file holding content-store translations.
const FileName = "directus.json"

// Project is a Localazy project.
type Project struct {
	ID             string        `json:"id"`
	OrgID          string        `json:"orgId"`
	Name           string        `json:"name"`
	URL            string        `json:"url"`
	SourceLanguage int           `json:"sourceLanguage"`
	Languages      []Language    `json:"languages,omitempty"`
	Organization   *Organization `json:"organization,omitempty"`
}

// Organization owns a project. It is included when ListProjects is called
// with Organization set.
type Organization struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PaymentStatus string `json:"paymentStatus"`
}

// Language is a language of a project.
type Language struct {
	ID      int    `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// File is a file of a project.
type File struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Module string `json:"module,omitempty"`
}

// Key is a translated key of a file.
type Key struct {
	ID    string   `json:"id"`
	Key   []string `json:"key"`
	Value any      `json:"value"`
}

// KeysPage is one page of keys.
type KeysPage struct {
	Keys []Key  `json:"keys"`
	Next string `json:"next,omitempty"`
}

// ProjectsOptions selects what ListProjects includes.
type ProjectsOptions struct {
	Organization bool
	Languages    bool
}

// KeysRequest selects the keys of a file in one language.
type KeysRequest struct {
	Project string
	File    string
	Lang    string
}

// ImportRequest uploads content for one language.
type ImportRequest struct {
	Project string
	File    string
	Lang    string
	Content map[string]any
	Options ImportOptions
}

// ImportOptions tune how Localazy treats uploaded keys.
type ImportOptions struct {
	ImportAsNew  bool `json:"importAsNew"`
	ForceCurrent bool `json:"forceCurrent"`
	ForceSource  bool `json:"forceSource"`
	FilterSource bool `json:"filterSource"`
}

// ImportResult identifies an accepted import batch.
type ImportResult struct {
	Result string `json:"result"`
}

// DeprecateNow marks a key deprecated in the current release.
const DeprecateNow = 0

// KeyUpdateRequest changes a key.
type KeyUpdateRequest struct {
	Project    string
	Key        string
	Deprecated int
}
