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
)

// DeprecateCollectionItems deprecates the remote keys of deleted items.
func (s *Service) DeprecateCollectionItems(ctx context.Context, collection string, ids []string) (*Report, error) {
	r := newReport(OpDeprecateItems, s.deps.Now())
	r.Collections = []string{collection}
	return s.deprecate(ctx, r, ids, func(c content.ImportContent) []string {
		var keys []string
		for _, id := range ids {
			keys = append(keys, c.RemoteKeyIDs(collection, id)...)
		}
		return keys
	})
}

// DeprecateTranslationStrings deprecates the remote keys of deleted strings.
func (s *Service) DeprecateTranslationStrings(ctx context.Context, ids []string) (*Report, error) {
	r := newReport(OpDeprecateStrings, s.deps.Now())
	return s.deprecate(ctx, r, ids, func(c content.ImportContent) []string {
		var keys []string
		for _, entry := range c.TranslationStrings {
			if slices.Contains(ids, entry.ID) {
				keys = append(keys, entry.RemoteKeyIDs...)
			}
		}
		return keys
	})
}

// deprecate fetches the source-language keys and deprecates the ones
// picked by match. It returns an error when the remote content could not
// be inspected; failures of single keys are only counted.
func (s *Service) deprecate(ctx context.Context, r *Report, ids []string, match func(content.ImportContent) []string) (*Report, error) {
	r.Deprecation = &DeprecationReport{}
	if len(ids) == 0 {
		r.skip("no deleted items")
		s.finish(r)
		return r, nil
	}

	inv, err := s.loadInvocation(ctx, r.Operation)
	if err != nil {
		r.fail(err)
		s.finish(r)
		return r, err
	}
	if !inv.settings.AutomatedDeprecation {
		r.skip("automated deprecation is disabled")
		s.finish(r)
		return r, nil
	}

	file, err := s.contentFile(ctx, inv, r.Operation)
	if err != nil {
		if errors.Is(err, errNothingToImport) {
			r.skip("nothing to deprecate")
			s.finish(r)
			return r, nil
		}
		r.fail(err)
		s.finish(r)
		return r, err
	}

	sourceLocale := s.remoteSourceLanguage(inv)
	keys, err := inv.client.ListKeys(ctx, localazy.KeysRequest{
		Project: inv.project.ID,
		File:    file.ID,
		Lang:    sourceLocale,
	})
	if err != nil {
		s.deps.Tracker.TrackLocalazyError(err, r.Operation, map[string]any{"language": sourceLocale})
		err = fmt.Errorf("fetching source keys: %w", err)
		r.fail(err)
		s.finish(r)
		return r, err
	}
	r.KeysFetched = len(keys)

	remote := make([]content.RemoteKey, 0, len(keys))
	for _, k := range keys {
		remote = append(remote, content.RemoteKey{ID: k.ID, Path: k.Key, Value: k.Value, Language: inv.settings.SourceLanguage})
	}
	candidates := uniqueStrings(match(content.Reconstruct(remote, content.ReconstructOptions{})))
	r.Deprecation.Candidates = len(candidates)

	q := batch.New[string]()
	for _, key := range candidates {
		q.Add(func(ctx context.Context) (string, error) {
			return key, inv.client.UpdateKey(ctx, localazy.KeyUpdateRequest{
				Project:    inv.project.ID,
				Key:        key,
				Deprecated: localazy.DeprecateNow,
			})
		})
	}
	for i, res := range q.Execute(ctx, batch.Options{DelayBetween: s.cfg.DeprecationDelay}) {
		if res.Err != nil {
			s.deps.Tracker.TrackLocalazyError(res.Err, OpDeprecateKeys, map[string]any{"key": candidates[i]})
			r.addError(fmt.Errorf("deprecating %s: %w", candidates[i], res.Err))
			r.Deprecation.Failed++
			continue
		}
		r.Deprecation.Deprecated++
	}

	if len(candidates) == 0 {
		r.skip("no remote keys reference the deleted items")
	}
	s.finish(r)
	return r, nil
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
