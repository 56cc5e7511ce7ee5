// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ocms-localazy/internal/batch"
	"github.com/olegiv/ocms-localazy/internal/content"
	"github.com/olegiv/ocms-localazy/internal/localazy"
	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// ExportAll uploads the translation strings and every enabled collection.
// The two run as independent jobs; a failure of one does not affect the other.
func (s *Service) ExportAll(ctx context.Context) (*Report, error) {
	r := newReport(OpExport, s.deps.Now())
	inv, err := s.start(ctx, r)
	if inv == nil {
		return r, err
	}
	if !inv.settings.AutomatedUpload {
		r.skip("automated upload is disabled")
		s.finish(r)
		return r, nil
	}

	languages, err := s.exportLanguages(ctx, inv)
	if err != nil {
		s.deps.Tracker.TrackStoreError(err, OpExport, nil)
		r.fail(err)
		s.finish(r)
		return r, nil
	}
	r.Languages = languages

	var g errgroup.Group
	if inv.setup.TranslationStrings {
		g.Go(func() error {
			strs := s.translationStringsContent(ctx, inv, languages, r)
			if err := s.upload(ctx, inv, strs, r); err != nil {
				return fmt.Errorf("exporting translation strings: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		collections := model.EnabledCollections(inv.enabled)
		r.update(func(r *Report) { r.Collections = collections })
		merged := s.collectionsContent(ctx, inv, collections, nil, languages, r)
		if err := s.upload(ctx, inv, merged, r); err != nil {
			return fmt.Errorf("exporting collections: %w", err)
		}
		return nil
	})
	// Message names the first job with failed uploads.
	if err := g.Wait(); err != nil {
		r.Message = err.Error()
	}

	if r.Status == "" && r.ChunksUploaded == 0 && len(r.Errors) == 0 {
		r.skip("nothing to export")
	}
	s.finish(r)
	return r, nil
}

// ExportCollectionItems uploads the given items of one collection.
func (s *Service) ExportCollectionItems(ctx context.Context, collection string, ids []string) (*Report, error) {
	r := newReport(OpExportCollection, s.deps.Now())
	inv, err := s.start(ctx, r)
	if inv == nil {
		return r, err
	}
	r.Collections = []string{collection}
	if !inv.settings.AutomatedUpload {
		r.skip("automated upload is disabled")
		s.finish(r)
		return r, nil
	}

	languages, err := s.exportLanguages(ctx, inv)
	if err != nil {
		s.deps.Tracker.TrackStoreError(err, OpExportCollection, map[string]any{"collection": collection})
		r.fail(err)
		s.finish(r)
		return r, nil
	}
	r.Languages = languages

	tc := s.collectionsContent(ctx, inv, []string{collection}, ids, languages, r)
	if len(tc.SourceLanguage) == 0 {
		if len(r.Errors) == 0 {
			r.skip(fmt.Sprintf("nothing to export for %s", collection))
		}
		s.finish(r)
		return r, nil
	}
	if err := s.upload(ctx, inv, tc, r); err != nil {
		r.Message = err.Error()
	}
	s.finish(r)
	return r, nil
}

// ExportTranslationStrings uploads the free-standing translation strings.
func (s *Service) ExportTranslationStrings(ctx context.Context) (*Report, error) {
	r := newReport(OpExportStrings, s.deps.Now())
	inv, err := s.start(ctx, r)
	if inv == nil {
		return r, err
	}
	switch {
	case !inv.settings.AutomatedUpload:
		r.skip("automated upload is disabled")
	case !inv.setup.TranslationStrings:
		r.skip("translation strings are not synchronized")
	}
	if r.Status != "" {
		s.finish(r)
		return r, nil
	}

	languages, err := s.exportLanguages(ctx, inv)
	if err != nil {
		s.deps.Tracker.TrackStoreError(err, OpExportStrings, nil)
		r.fail(err)
		s.finish(r)
		return r, nil
	}
	r.Languages = languages

	tc := s.translationStringsContent(ctx, inv, languages, r)
	if len(tc.SourceLanguage) == 0 {
		if len(r.Errors) == 0 {
			r.skip("nothing to export")
		}
		s.finish(r)
		return r, nil
	}
	if err := s.upload(ctx, inv, tc, r); err != nil {
		r.Message = err.Error()
	}
	s.finish(r)
	return r, nil
}

// collectionsContent fetches and flattens collections, one fetch job per
// collection paced by the collection delay. Failed collections are tracked
// and left out.
func (s *Service) collectionsContent(ctx context.Context, inv *invocation, collections, ids, languages []string, r *Report) content.TranslatableContent {
	q := batch.New[content.TranslatableContent]()
	for _, collection := range collections {
		q.Add(func(ctx context.Context) (content.TranslatableContent, error) {
			return s.collectionContent(ctx, inv, collection, ids, languages)
		})
	}

	merged := content.NewTranslatableContent()
	for i, res := range q.Execute(ctx, batch.Options{DelayBetween: s.cfg.CollectionDelay}) {
		if res.Err != nil {
			s.deps.Tracker.TrackStoreError(res.Err, OpFetchContent, map[string]any{"collection": collections[i]})
			r.addError(fmt.Errorf("collection %s: %w", collections[i], res.Err))
			continue
		}
		merged.Merge(res.Data)
	}
	return merged
}

func (s *Service) collectionContent(ctx context.Context, inv *invocation, collection string, ids, languages []string) (content.TranslatableContent, error) {
	enabled := model.FieldsFor(inv.enabled, collection)
	if len(enabled) == 0 {
		return content.NewTranslatableContent(), nil
	}
	schema, err := s.collectionSchema(ctx, inv, collection)
	if err != nil {
		return content.TranslatableContent{}, err
	}
	if len(schema.Relations) == 0 {
		return content.NewTranslatableContent(), nil
	}

	items, err := s.deps.Store.FetchItems(ctx, collection, source.Query{
		Fields: schema.queryFields(),
		IDs:    ids,
	})
	if err != nil {
		return content.TranslatableContent{}, fmt.Errorf("fetching items: %w", err)
	}

	return content.FlattenCollection(content.FlattenInput{
		Collection:        collection,
		Items:             items,
		Relations:         schema.Relations,
		EnabledFields:     enabled,
		Schema:            schema.Fields,
		Languages:         languages,
		SourceLanguage:    inv.settings.SourceLanguage,
		LanguageCodeField: inv.settings.LanguageCodeField,
		SkipEmpty:         inv.settings.SkipEmptyStrings,
	}), nil
}

// translationStrings reads the strings from the dedicated table, falling
// back to the legacy settings blob when the table cannot be read.
func (s *Service) translationStrings(ctx context.Context) ([]model.TranslationString, error) {
	if s.deps.Store.HasTranslationStringsCollection(ctx) {
		rows, err := s.deps.Store.FetchTranslationStrings(ctx)
		if err == nil {
			return model.GroupTranslationStrings(rows), nil
		}
		s.deps.Tracker.TrackStoreError(err, OpFetchStrings, map[string]any{"fallback": "legacy"})
	}
	return s.deps.Store.FetchLegacyTranslationStrings(ctx)
}

func (s *Service) translationStringsContent(ctx context.Context, inv *invocation, languages []string, r *Report) content.TranslatableContent {
	strs, err := s.translationStrings(ctx)
	if err != nil {
		s.deps.Tracker.TrackStoreError(err, OpFetchStrings, nil)
		r.addError(fmt.Errorf("translation strings: %w", err))
		return content.NewTranslatableContent()
	}
	return content.FlattenTranslationStrings(strs, languages, inv.settings.SourceLanguage, inv.settings.SkipEmptyStrings)
}

// upload sends the source language first and then every other language,
// each split into chunks, one import call per chunk paced by the export
// delay. Content without source-language values is not uploaded.
func (s *Service) upload(ctx context.Context, inv *invocation, tc content.TranslatableContent, r *Report) error {
	if len(tc.SourceLanguage) == 0 {
		return nil
	}

	type chunkJob struct {
		language string
		values   int
	}
	var jobs []chunkJob
	q := batch.New[int]()
	add := func(language string, entry content.Entry) {
		for _, chunk := range content.SplitIntoChunks(entry, s.cfg.ChunkSize) {
			n := content.CountValues(chunk)
			jobs = append(jobs, chunkJob{language: language, values: n})
			q.Add(func(ctx context.Context) (int, error) {
				_, err := inv.client.ImportJSON(ctx, localazy.ImportRequest{
					Project: inv.project.ID,
					File:    localazy.FileName,
					Lang:    language,
					Content: chunk,
				})
				return n, err
			})
		}
	}

	add(s.remoteSourceLanguage(inv), tc.SourceLanguage)
	for _, lang := range tc.Languages() {
		add(inv.mapper.ToRemote(lang), tc.OtherLanguages[lang])
	}

	failed := 0
	for i, res := range q.Execute(ctx, batch.Options{DelayBetween: s.cfg.ExportDelay}) {
		if res.Err != nil {
			failed++
			s.deps.Tracker.TrackLocalazyError(res.Err, OpUploadContent, map[string]any{"language": jobs[i].language})
			r.addError(fmt.Errorf("uploading %s: %w", jobs[i].language, res.Err))
			continue
		}
		r.update(func(r *Report) {
			r.ChunksUploaded++
			r.KeysExported += res.Data
		})
		s.logger.Debug("exported chunk", "category", "export", "language", jobs[i].language, "keys", res.Data)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(jobs))
	}
	return nil
}
