// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package source defines the capabilities the synchronization core needs
// from the content store.
package source

import (
	"context"
	"errors"

	"github.com/olegiv/ocms-localazy/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Query selects items of a collection.
//
// Fields lists the fields to return. A trailing ".*" expands a relation:
// "translations.*" returns the related rows and "translations.languages_code.*"
// additionally expands the language referenced by each row. An empty list
// returns the stored fields only.
type Query struct {
	Fields []string
	IDs    []string
	Limit  int // zero or negative returns every match
}

// Store reads and writes content-store records and the persisted sync
// configuration.
type Store interface {
	FetchItems(ctx context.Context, collection string, q Query) ([]model.Item, error)
	// CreateItem stores data and returns the primary key of the new item.
	CreateItem(ctx context.Context, collection string, data model.Item) (string, error)
	// UpdateItem merges data into the item. Translation relation fields may
	// carry {"create": [...], "update": [...]} payloads.
	UpdateItem(ctx context.Context, collection, id string, data model.Item) error

	FetchSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error
	FetchContentTransferSetup(ctx context.Context) (*model.ContentTransferSetup, error)
	SaveContentTransferSetup(ctx context.Context, s model.ContentTransferSetup) error
	FetchLocalazyData(ctx context.Context) (*model.LocalazyData, error)
	SaveLocalazyData(ctx context.Context, d model.LocalazyData) error

	// HasTranslationStringsCollection reports whether strings live in the
	// dedicated table rather than the legacy settings blob.
	HasTranslationStringsCollection(ctx context.Context) bool
	FetchTranslationStrings(ctx context.Context) ([]model.TranslationStringRow, error)
	UpsertTranslationString(ctx context.Context, row model.TranslationStringRow) (model.TranslationStringRow, error)
	FetchLegacyTranslationStrings(ctx context.Context) ([]model.TranslationString, error)
	SaveLegacyTranslationStrings(ctx context.Context, strs []model.TranslationString) error
}

// DataModel describes collections, fields and relations.
type DataModel interface {
	GetFieldsForCollection(ctx context.Context, collection string) ([]model.Field, error)
	// GetRelationsForField returns the relation backing field. For a
	// translations field the relation from the junction collection to the
	// language collection follows it.
	GetRelationsForField(ctx context.Context, collection, field string) ([]model.Relation, error)
}
