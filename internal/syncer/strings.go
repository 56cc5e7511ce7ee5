// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/olegiv/ocms-localazy/internal/content"
	"github.com/olegiv/ocms-localazy/internal/model"
)

// upsertTranslationStrings writes imported strings and returns the number
// of rows created or changed. The dedicated table is used when present;
// if it cannot be read the legacy settings blob is updated instead.
func (s *Service) upsertTranslationStrings(ctx context.Context, entries map[string]*content.StringEntry) (int, error) {
	if s.deps.Store.HasTranslationStringsCollection(ctx) {
		rows, err := s.deps.Store.FetchTranslationStrings(ctx)
		if err == nil {
			return s.upsertTranslationStringRows(ctx, rows, entries)
		}
		s.deps.Tracker.TrackStoreError(err, OpUpsertStrings, map[string]any{"fallback": "legacy"})
	}
	return s.mergeLegacyTranslationStrings(ctx, entries)
}

type stringRowKey struct {
	key, language string
}

func (s *Service) upsertTranslationStringRows(ctx context.Context, rows []model.TranslationStringRow, entries map[string]*content.StringEntry) (int, error) {
	existing := make(map[stringRowKey]model.TranslationStringRow, len(rows))
	for _, row := range rows {
		existing[stringRowKey{row.Key, row.Language}] = row
	}

	var (
		n    int
		errs []error
	)
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		entry := entries[key]
		for _, lang := range slices.Sorted(maps.Keys(entry.Translations)) {
			value := entry.Translations[lang]
			row, ok := existing[stringRowKey{key, lang}]
			if ok && row.Value == value {
				continue
			}
			if !ok {
				row = model.TranslationStringRow{Key: key, Language: lang}
			}
			row.Value = value
			if _, err := s.deps.Store.UpsertTranslationString(ctx, row); err != nil {
				errs = append(errs, fmt.Errorf("%s (%s): %w", key, lang, err))
				continue
			}
			n++
		}
	}
	return n, errors.Join(errs...)
}

func (s *Service) mergeLegacyTranslationStrings(ctx context.Context, entries map[string]*content.StringEntry) (int, error) {
	strs, err := s.deps.Store.FetchLegacyTranslationStrings(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching legacy strings: %w", err)
	}

	n := 0
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		entry := entries[key]
		idx := slices.IndexFunc(strs, func(ts model.TranslationString) bool { return ts.Key == key })
		if idx < 0 {
			strs = append(strs, model.TranslationString{Key: key, Translations: map[string]string{}})
			idx = len(strs) - 1
		}
		if strs[idx].Translations == nil {
			strs[idx].Translations = map[string]string{}
		}
		for lang, value := range entry.Translations {
			if current, ok := strs[idx].Translations[lang]; ok && current == value {
				continue
			}
			strs[idx].Translations[lang] = value
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.deps.Store.SaveLegacyTranslationStrings(ctx, strs); err != nil {
		return 0, fmt.Errorf("saving legacy strings: %w", err)
	}
	return n, nil
}
