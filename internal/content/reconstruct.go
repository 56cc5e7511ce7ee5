// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"slices"

	"github.com/olegiv/ocms-localazy/internal/model"
)

// RemoteKey is a translated key fetched from Localazy.
type RemoteKey struct {
	ID       string
	Path     []string
	Value    any
	Language string // content-store language code
}

// FieldValue is a translated value of one field.
type FieldValue struct {
	Field       string
	Value       string
	RemoteKeyID string
}

// ItemsInLanguage groups the translated fields of one item, translations
// field and language.
type ItemsInLanguage struct {
	Language         string
	TranslationField string
	Values           []FieldValue
}

// Value returns the translated value of field.
func (l ItemsInLanguage) Value(field string) (string, bool) {
	for _, v := range l.Values {
		if v.Field == field {
			return v.Value, true
		}
	}
	return "", false
}

// CollectionContent is the imported content of one collection.
type CollectionContent struct {
	TranslationFields []string
	Items             map[string][]ItemsInLanguage
}

// StringEntry is an imported free-standing string.
type StringEntry struct {
	ID           string
	Key          string
	Translations map[string]string
	RemoteKeyIDs []string
}

// ImportContent is the nested form of fetched remote keys.
type ImportContent struct {
	Collections        map[string]*CollectionContent
	TranslationStrings map[string]*StringEntry
}

// Empty reports whether nothing was reconstructed.
func (c ImportContent) Empty() bool {
	return len(c.Collections) == 0 && len(c.TranslationStrings) == 0
}

// RemoteKeyIDs returns the ids of every remote key of an item.
func (c ImportContent) RemoteKeyIDs(collection, itemID string) []string {
	col, ok := c.Collections[collection]
	if !ok {
		return nil
	}
	var ids []string
	for _, l := range col.Items[itemID] {
		for _, v := range l.Values {
			if v.RemoteKeyID != "" && !slices.Contains(ids, v.RemoteKeyID) {
				ids = append(ids, v.RemoteKeyID)
			}
		}
	}
	return ids
}

// ReconstructOptions filters reconstruction.
type ReconstructOptions struct {
	// EnabledFields restricts collection keys to enabled fields when non-nil.
	EnabledFields []model.EnabledField
	// ItemExists reports whether a referenced item is still present.
	// Keys of missing items are dropped. Nil accepts every item.
	ItemExists func(collection, itemID string) bool
}

// Reconstruct groups remote keys by collection, item and language. Keys
// under TranslationStringsCollection become translation strings. Keys with
// an unexpected shape, a non-string value or a missing item are skipped.
func Reconstruct(keys []RemoteKey, opts ReconstructOptions) ImportContent {
	out := ImportContent{
		Collections:        map[string]*CollectionContent{},
		TranslationStrings: map[string]*StringEntry{},
	}

	for _, k := range keys {
		value, ok := k.Value.(string)
		if !ok || len(k.Path) == 0 {
			continue
		}

		if k.Path[0] == TranslationStringsCollection {
			if len(k.Path) != 3 {
				continue
			}
			id, key := k.Path[1], k.Path[2]
			entry, ok := out.TranslationStrings[key]
			if !ok {
				entry = &StringEntry{ID: id, Key: key, Translations: map[string]string{}}
				out.TranslationStrings[key] = entry
			}
			entry.Translations[k.Language] = value
			if k.ID != "" && !slices.Contains(entry.RemoteKeyIDs, k.ID) {
				entry.RemoteKeyIDs = append(entry.RemoteKeyIDs, k.ID)
			}
			continue
		}

		if len(k.Path) != 4 {
			continue
		}
		collection, itemID, relField, field := k.Path[0], k.Path[1], k.Path[2], k.Path[3]
		if IsMetaKey(field) {
			continue
		}
		if opts.EnabledFields != nil && !slices.Contains(model.FieldsFor(opts.EnabledFields, collection), field) {
			continue
		}
		if opts.ItemExists != nil && !opts.ItemExists(collection, itemID) {
			continue
		}

		col, ok := out.Collections[collection]
		if !ok {
			col = &CollectionContent{Items: map[string][]ItemsInLanguage{}}
			out.Collections[collection] = col
		}
		if !slices.Contains(col.TranslationFields, relField) {
			col.TranslationFields = append(col.TranslationFields, relField)
		}

		group := col.Items[itemID]
		idx := slices.IndexFunc(group, func(l ItemsInLanguage) bool {
			return l.Language == k.Language && l.TranslationField == relField
		})
		if idx < 0 {
			group = append(group, ItemsInLanguage{Language: k.Language, TranslationField: relField})
			idx = len(group) - 1
		}
		group[idx].Values = append(group[idx].Values, FieldValue{Field: field, Value: value, RemoteKeyID: k.ID})
		col.Items[itemID] = group
	}

	return out
}
