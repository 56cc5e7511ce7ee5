// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/olegiv/ocms-localazy/internal/batch"
	"github.com/olegiv/ocms-localazy/internal/content"
	"github.com/olegiv/ocms-localazy/internal/localazy"
	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// errNothingToImport is tracked when the project has no content file.
var errNothingToImport = errors.New("nothing to import")

// keyFetchConcurrency bounds the key listings waiting in the throttler.
const keyFetchConcurrency = 4

// Import fetches translations from Localazy and writes them back to the store.
func (s *Service) Import(ctx context.Context) (*Report, error) {
	r := newReport(OpImport, s.deps.Now())
	inv, err := s.start(ctx, r)
	if inv == nil {
		return r, err
	}

	languages, err := s.resolveImportLanguages(ctx, inv, r)
	if err != nil {
		s.deps.Tracker.TrackStoreError(err, OpResolveLanguages, nil)
		r.fail(err)
		s.finish(r)
		return r, nil
	}
	r.Languages = model.LanguageCodes(languages)
	if len(languages) == 0 {
		r.skip("no languages to import")
		s.finish(r)
		return r, nil
	}

	keys, ok := s.fetchRemoteKeys(ctx, inv, languages, r)
	if !ok {
		s.finish(r)
		return r, nil
	}

	imported := content.Reconstruct(keys, content.ReconstructOptions{EnabledFields: inv.enabled})
	if imported.Empty() {
		if len(r.Errors) == 0 {
			r.skip("nothing to import")
		}
		s.finish(r)
		return r, nil
	}

	s.writeBack(ctx, inv, imported, r)
	s.finish(r)
	return r, nil
}

// contentFile returns the project file holding store content.
func (s *Service) contentFile(ctx context.Context, inv *invocation, operation string) (localazy.File, error) {
	files, err := inv.client.ListFiles(ctx, inv.project.ID)
	if err != nil {
		s.deps.Tracker.TrackLocalazyError(err, operation, nil)
		return localazy.File{}, fmt.Errorf("listing files: %w", err)
	}
	for _, f := range files {
		if f.Name == localazy.FileName {
			return f, nil
		}
	}
	s.deps.Tracker.TrackLocalazyError(errNothingToImport, operation, nil)
	return localazy.File{}, errNothingToImport
}

// fetchRemoteKeys lists the keys of every language, tagged with the
// content-store code. It returns false when the content file is missing.
func (s *Service) fetchRemoteKeys(ctx context.Context, inv *invocation, languages []model.SyncLanguage, r *Report) ([]content.RemoteKey, bool) {
	file, err := s.contentFile(ctx, inv, OpFetchContent)
	if err != nil {
		if errors.Is(err, errNothingToImport) {
			r.skip("nothing to import")
		} else {
			r.fail(err)
		}
		return nil, false
	}

	unique := uniqueByRemote(languages)
	q := batch.New[[]localazy.Key]()
	for _, l := range unique {
		q.Add(func(ctx context.Context) ([]localazy.Key, error) {
			return inv.client.ListKeys(ctx, localazy.KeysRequest{
				Project: inv.project.ID,
				File:    file.ID,
				Lang:    l.LocalazyForm,
			})
		})
	}

	var keys []content.RemoteKey
	for i, res := range q.Execute(ctx, batch.Options{Concurrency: keyFetchConcurrency}) {
		lang := unique[i]
		if res.Err != nil {
			s.deps.Tracker.TrackLocalazyError(
				fmt.Errorf("couldn't fetch content for %s: %w", lang.LocalazyForm, res.Err),
				OpFetchContent, map[string]any{"language": lang.LocalazyForm})
			r.addError(fmt.Errorf("fetching %s: %w", lang.LocalazyForm, res.Err))
			continue
		}
		for _, k := range res.Data {
			keys = append(keys, content.RemoteKey{
				ID:       k.ID,
				Path:     k.Key,
				Value:    k.Value,
				Language: lang.DirectusForm,
			})
		}
		r.KeysFetched += len(res.Data)
	}
	return keys, true
}

// writeBack upserts every imported collection and the translation strings,
// one job each paced by the export delay.
func (s *Service) writeBack(ctx context.Context, inv *invocation, imported content.ImportContent, r *Report) {
	collections := make([]string, 0, len(imported.Collections))
	for name := range imported.Collections {
		collections = append(collections, name)
	}
	slices.Sort(collections)
	r.Collections = collections

	q := batch.New[struct{}]()
	labels := make([]string, 0, len(collections)+1)
	for _, name := range collections {
		labels = append(labels, name)
		q.Add(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.upsertCollection(ctx, inv, name, imported.Collections[name], r)
		})
	}
	if len(imported.TranslationStrings) > 0 {
		labels = append(labels, content.TranslationStringsCollection)
		q.Add(func(ctx context.Context) (struct{}, error) {
			n, err := s.upsertTranslationStrings(ctx, imported.TranslationStrings)
			r.update(func(r *Report) { r.StringsUpserted += n })
			return struct{}{}, err
		})
	}

	for i, res := range q.Execute(ctx, batch.Options{DelayBetween: s.cfg.ExportDelay}) {
		if res.Err != nil {
			s.deps.Tracker.TrackStoreError(res.Err, OpWriteBack, map[string]any{"collection": labels[i]})
			r.addError(fmt.Errorf("writing %s: %w", labels[i], res.Err))
		}
	}
}

// upsertCollection writes the imported translations of one collection.
// Items missing from the store are skipped. A failing item is tracked and
// does not stop the others.
func (s *Service) upsertCollection(ctx context.Context, inv *invocation, collection string, cc *content.CollectionContent, r *Report) error {
	schema, err := s.collectionSchema(ctx, inv, collection)
	if err != nil {
		return err
	}

	fields := []string{"id"}
	for _, tf := range cc.TranslationFields {
		lf := schema.languageField(tf)
		fields = append(fields, tf+".*", tf+"."+lf+".*")
	}
	ids := make([]string, 0, len(cc.Items))
	for id := range cc.Items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	items, err := s.deps.Store.FetchItems(ctx, collection, source.Query{Fields: fields, IDs: ids})
	if err != nil {
		return fmt.Errorf("fetching items: %w", err)
	}
	byID := make(map[string]model.Item, len(items))
	for _, item := range items {
		byID[content.ItemID(item["id"])] = item
	}

	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			r.update(func(r *Report) { r.ItemsSkipped++ })
			continue
		}
		groups := cc.Items[id]
		if s.cfg.SanitizeHTML {
			groups = sanitizeGroups(groups)
		}
		payload := buildTranslationPayload(item, groups, schema, inv.settings.LanguageCodeField)
		if payload == nil {
			r.update(func(r *Report) { r.ItemsSkipped++ })
			continue
		}
		if err := s.deps.Store.UpdateItem(ctx, collection, id, payload); err != nil {
			s.deps.Tracker.TrackStoreError(err, OpWriteBack, map[string]any{"collection": collection, "item": id})
			r.addError(fmt.Errorf("updating %s/%s: %w", collection, id, err))
			continue
		}
		r.update(func(r *Report) { r.ItemsUpdated++ })
	}
	return nil
}

// buildTranslationPayload diffs imported values against the translation
// rows of item. Existing rows receive only changed fields, languages
// without a row are created. It returns nil when nothing would change.
func buildTranslationPayload(item model.Item, groups []content.ItemsInLanguage, schema collectionSchema, codeField string) model.Item {
	type changes struct {
		create []any
		update []any
	}
	perField := map[string]*changes{}
	var order []string

	for _, g := range groups {
		lf := schema.languageField(g.TranslationField)
		row := findRow(item[g.TranslationField], lf, codeField, g.Language)

		c, ok := perField[g.TranslationField]
		if !ok {
			c = &changes{}
			perField[g.TranslationField] = c
			order = append(order, g.TranslationField)
		}

		if row == nil {
			created := map[string]any{lf: g.Language}
			for _, v := range g.Values {
				created[v.Field] = v.Value
			}
			c.create = append(c.create, created)
			continue
		}

		updated := map[string]any{}
		for _, v := range g.Values {
			if asString(row[v.Field]) != v.Value {
				updated[v.Field] = v.Value
			}
		}
		if len(updated) == 0 {
			continue
		}
		updated["id"] = row["id"]
		c.update = append(c.update, updated)
	}

	payload := model.Item{}
	for _, field := range order {
		c := perField[field]
		if len(c.create) == 0 && len(c.update) == 0 {
			continue
		}
		nested := map[string]any{}
		if len(c.create) > 0 {
			nested["create"] = c.create
		}
		if len(c.update) > 0 {
			nested["update"] = c.update
		}
		payload[field] = nested
	}
	if len(payload) == 0 {
		return nil
	}
	return payload
}

// findRow returns the translation row of language among rows.
func findRow(rows any, languageField, codeField, language string) map[string]any {
	list, _ := rows.([]any)
	for _, r := range list {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		ref, ok := content.LanguageRefOf(row[languageField])
		if !ok {
			continue
		}
		if code, ok := content.ResolveLanguage(ref, codeField); ok && code == language {
			return row
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
