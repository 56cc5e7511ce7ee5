// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"github.com/olegiv/ocms-localazy/internal/model"
)

// TranslationRelation names a translations field of a collection and the
// field of its rows that references the language.
type TranslationRelation struct {
	Field         string
	LanguageField string
}

// FlattenInput is the input of FlattenCollection.
type FlattenInput struct {
	Collection        string
	Items             []model.Item
	Relations         []TranslationRelation
	EnabledFields     []string
	Schema            map[string]model.Field // translation row fields by name
	Languages         []string
	SourceLanguage    string
	LanguageCodeField string // code field of expanded language records
	SkipEmpty         bool
}

// Origin identifies the record a flattened value came from.
type Origin struct {
	Collection    string
	RelationField string
	Field         string
	ItemID        any
}

// Meta builds the metadata sibling stored next to a source-language value.
func Meta(o Origin, schema *model.Field) map[string]any {
	source := map[string]any{
		"collection": o.Collection,
		"field":      o.Field,
		"itemId":     o.ItemID,
	}
	if o.RelationField != "" {
		source["relation_field"] = o.RelationField
	}
	meta := map[string]any{
		"add": map[string]any{"source": source},
	}
	if schema != nil {
		if schema.MaxLength != nil {
			meta["limit"] = *schema.MaxLength
		}
		if schema.Comment != "" {
			meta["comment"] = schema.Comment
		}
	}
	return meta
}

// FlattenCollection converts the items of one collection into content keyed
// [collection][itemId][relationField][field]. Rows in languages outside
// in.Languages are ignored.
func FlattenCollection(in FlattenInput) TranslatableContent {
	out := NewTranslatableContent()

	enabled := make(map[string]bool, len(in.EnabledFields))
	for _, f := range in.EnabledFields {
		enabled[f] = true
	}
	requested := make(map[string]bool, len(in.Languages))
	for _, l := range in.Languages {
		requested[l] = true
	}

	for _, item := range in.Items {
		itemID := ItemID(item["id"])
		if itemID == "" {
			continue
		}

		for _, rel := range in.Relations {
			for _, row := range rows(item[rel.Field]) {
				ref, ok := LanguageRefOf(row[rel.LanguageField])
				if !ok {
					continue
				}
				lang, ok := ResolveLanguage(ref, in.LanguageCodeField)
				if !ok || !requested[lang] {
					continue
				}

				isSource := lang == in.SourceLanguage
				target := out.SourceLanguage
				if !isSource {
					if out.OtherLanguages[lang] == nil {
						out.OtherLanguages[lang] = Entry{}
					}
					target = out.OtherLanguages[lang]
				}

				for fieldName, value := range row {
					if !enabled[fieldName] {
						continue
					}
					if !truthy(value) && in.SkipEmpty {
						continue
					}

					payload := Entry{fieldName: stringValue(value)}
					if isSource {
						var schema *model.Field
						if f, ok := in.Schema[fieldName]; ok {
							schema = &f
						}
						payload[MetaPrefix+fieldName] = Meta(Origin{
							Collection:    in.Collection,
							RelationField: rel.Field,
							Field:         fieldName,
							ItemID:        item["id"],
						}, schema)
					}

					Merge(target, Entry{
						in.Collection: Entry{
							itemID: Entry{
								rel.Field: payload,
							},
						},
					})
				}
			}
		}
	}

	return out
}

// FlattenTranslationStrings converts free-standing strings into content keyed
// [translation_strings][id][key].
func FlattenTranslationStrings(strs []model.TranslationString, languages []string, sourceLanguage string, skipEmpty bool) TranslatableContent {
	out := NewTranslatableContent()

	requested := make(map[string]bool, len(languages))
	for _, l := range languages {
		requested[l] = true
	}

	for _, s := range strs {
		id := s.ID
		if id == "" {
			id = s.Key
		}
		if id == "" || s.Key == "" {
			continue
		}

		for lang, value := range s.Translations {
			if !requested[lang] {
				continue
			}
			if value == "" && skipEmpty {
				continue
			}

			payload := Entry{s.Key: value}
			target := out.SourceLanguage
			if lang == sourceLanguage {
				payload[MetaPrefix+s.Key] = Meta(Origin{
					Collection: TranslationStringsCollection,
					Field:      s.Key,
					ItemID:     id,
				}, nil)
			} else {
				if out.OtherLanguages[lang] == nil {
					out.OtherLanguages[lang] = Entry{}
				}
				target = out.OtherLanguages[lang]
			}

			Merge(target, Entry{
				TranslationStringsCollection: Entry{id: payload},
			})
		}
	}

	return out
}

func rows(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, r := range t {
			if m, ok := r.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
