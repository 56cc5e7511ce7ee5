// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"context"
	"fmt"

	"github.com/olegiv/ocms-localazy/internal/content"
	"github.com/olegiv/ocms-localazy/internal/model"
)

// defaultLanguageField references the language from translation rows when
// no relation names it.
const defaultLanguageField = "languages_code"

// collectionSchema describes the translations fields of a collection.
type collectionSchema struct {
	Relations []content.TranslationRelation `json:"relations"`
	// Fields of the translation rows, keyed by name.
	Fields map[string]model.Field `json:"fields"`
}

// languageField returns the language reference field of a translations field.
func (cs collectionSchema) languageField(translationField string) string {
	for _, rel := range cs.Relations {
		if rel.Field == translationField {
			return rel.LanguageField
		}
	}
	return defaultLanguageField
}

// queryFields selects the item id, the translation rows and their languages.
func (cs collectionSchema) queryFields() []string {
	fields := []string{"id"}
	for _, rel := range cs.Relations {
		fields = append(fields, rel.Field+".*", rel.Field+"."+rel.LanguageField+".*")
	}
	return fields
}

func (s *Service) collectionSchema(ctx context.Context, inv *invocation, collection string) (collectionSchema, error) {
	load := func(ctx context.Context) (collectionSchema, error) {
		return s.loadCollectionSchema(ctx, inv.settings.LanguageCollection, collection)
	}
	if s.schemas == nil {
		return load(ctx)
	}
	return s.schemas.GetOrLoad(ctx, inv.settings.LanguageCollection+":"+collection, load)
}

func (s *Service) loadCollectionSchema(ctx context.Context, languageCollection, collection string) (collectionSchema, error) {
	fields, err := s.deps.Model.GetFieldsForCollection(ctx, collection)
	if err != nil {
		return collectionSchema{}, fmt.Errorf("fields of %s: %w", collection, err)
	}

	cs := collectionSchema{Fields: map[string]model.Field{}}
	for _, f := range fields {
		if !f.IsTranslations() {
			continue
		}
		relations, err := s.deps.Model.GetRelationsForField(ctx, collection, f.Field)
		if err != nil {
			return collectionSchema{}, fmt.Errorf("relations of %s.%s: %w", collection, f.Field, err)
		}

		rel := content.TranslationRelation{Field: f.Field, LanguageField: defaultLanguageField}
		for _, r := range relations {
			if r.RelatedCollection == languageCollection {
				rel.LanguageField = r.Field
				break
			}
		}
		cs.Relations = append(cs.Relations, rel)

		if len(relations) == 0 {
			continue
		}
		rowFields, err := s.deps.Model.GetFieldsForCollection(ctx, relations[0].Collection)
		if err != nil {
			return collectionSchema{}, fmt.Errorf("fields of %s: %w", relations[0].Collection, err)
		}
		for _, rf := range rowFields {
			cs.Fields[rf.Field] = rf
		}
	}
	return cs, nil
}
