// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"context"
	"fmt"
	"slices"

	"github.com/olegiv/ocms-localazy/internal/content"
	"github.com/olegiv/ocms-localazy/internal/langmap"
	"github.com/olegiv/ocms-localazy/internal/localazy"
	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// ResolveExportLanguages returns every store language when existing
// translations are uploaded, otherwise only the source language.
func ResolveExportLanguages(settings model.Settings, storeLanguages []string) []string {
	if settings.UploadExistingTranslations {
		return slices.Clone(storeLanguages)
	}
	return []string{settings.SourceLanguage}
}

// storeLanguages returns the codes of the language collection in store order.
func (s *Service) storeLanguages(ctx context.Context, inv *invocation) ([]string, error) {
	items, err := s.deps.Store.FetchItems(ctx, inv.settings.LanguageCollection, source.Query{})
	if err != nil {
		return nil, fmt.Errorf("fetching languages: %w", err)
	}
	codes := make([]string, 0, len(items))
	for _, item := range items {
		if code := content.ItemID(item[inv.settings.LanguageCodeField]); code != "" {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

func (s *Service) exportLanguages(ctx context.Context, inv *invocation) ([]string, error) {
	if !inv.settings.UploadExistingTranslations {
		return ResolveExportLanguages(inv.settings, nil), nil
	}
	codes, err := s.storeLanguages(ctx, inv)
	if err != nil {
		return nil, err
	}
	return ResolveExportLanguages(inv.settings, codes), nil
}

// resolveImportLanguages returns the languages to import, creating remote
// languages missing from the store when configured to.
func (s *Service) resolveImportLanguages(ctx context.Context, inv *invocation, r *Report) ([]model.SyncLanguage, error) {
	codes, err := s.storeLanguages(ctx, inv)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.SyncLanguage, 0, len(codes)+len(inv.project.Languages))
	known := make(map[string]bool, 2*len(codes))
	for _, code := range codes {
		remote := inv.mapper.ToRemote(code)
		candidates = append(candidates, model.SyncLanguage{
			OriginalForm: code,
			DirectusForm: code,
			LocalazyForm: remote,
		})
		known[code] = true
		known[remote] = true
	}

	var missing []localazy.Language
	for _, l := range inv.project.Languages {
		if known[l.Code] {
			continue
		}
		missing = append(missing, l)
		candidates = append(candidates, model.SyncLanguage{
			OriginalForm: l.Code,
			DirectusForm: inv.mapper.ToSource(l.Code),
			LocalazyForm: l.Code,
		})
	}

	s.createMissingLanguages(ctx, inv, missing, r)

	return s.filterSourceLanguage(inv, candidates), nil
}

// createMissingLanguages adds remote languages to the store one at a time.
// Failures are tracked and do not stop resolution.
func (s *Service) createMissingLanguages(ctx context.Context, inv *invocation, missing []localazy.Language, r *Report) {
	mode := inv.settings.CreateMissingLanguages
	if mode == model.CreateMissingNone {
		return
	}
	for _, l := range missing {
		if mode == model.CreateMissingOnlyNonHidden && !l.Enabled {
			continue
		}
		code := inv.mapper.ToSource(l.Code)
		name := l.Name
		if name == "" {
			name = langmap.DisplayName(code)
		}
		_, err := s.deps.Store.CreateItem(ctx, inv.settings.LanguageCollection, model.Item{
			inv.settings.LanguageCodeField: code,
			"name":                         name,
		})
		if err != nil {
			s.deps.Tracker.TrackStoreError(err, OpCreateLanguages, map[string]any{"language": code})
			r.addError(fmt.Errorf("creating language %s: %w", code, err))
			continue
		}
		s.logger.Info("created missing language", "category", "languages", "language", code, "mode", mode.String())
		r.update(func(r *Report) { r.LanguagesCreated = append(r.LanguagesCreated, code) })
	}
}

// filterSourceLanguage drops or relabels the source language and removes
// duplicates by content-store code, keeping the first occurrence.
func (s *Service) filterSourceLanguage(inv *invocation, candidates []model.SyncLanguage) []model.SyncLanguage {
	sourceID := inv.project.SourceLanguage
	configured := inv.settings.SourceLanguage
	remoteSource := s.remoteSourceLanguage(inv)

	filtered := make([]model.SyncLanguage, 0, len(candidates))
	for _, c := range candidates {
		if inv.settings.ImportSourceLanguage {
			if c.LocalazyForm == remoteSource {
				c.DirectusForm = configured
			}
		} else if langmap.RemoteToSourceLanguage(s.deps.Catalog, c.DirectusForm, sourceID, configured) == configured {
			continue
		}
		filtered = append(filtered, c)
	}

	seen := make(map[string]bool, len(filtered))
	out := filtered[:0]
	for _, c := range filtered {
		if seen[c.DirectusForm] {
			continue
		}
		seen[c.DirectusForm] = true
		out = append(out, c)
	}
	return out
}

// uniqueByRemote keeps the first language of every Localazy code.
func uniqueByRemote(languages []model.SyncLanguage) []model.SyncLanguage {
	seen := make(map[string]bool, len(languages))
	out := make([]model.SyncLanguage, 0, len(languages))
	for _, l := range languages {
		if seen[l.LocalazyForm] {
			continue
		}
		seen[l.LocalazyForm] = true
		out = append(out, l)
	}
	return out
}
