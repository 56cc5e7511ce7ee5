// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"context"

	"github.com/olegiv/ocms-localazy/internal/hook"
)

// RegisterHooks subscribes the service to content-store events. Deletions
// are handled best-effort: a delete event may arrive for a deletion the
// store later rejects, so deprecation failures are logged and never fail
// the event.
func (s *Service) RegisterHooks(reg *hook.Registry) {
	exportStrings := func(ctx context.Context, _ hook.Event) error {
		_, err := s.ExportTranslationStrings(ctx)
		return err
	}
	deprecateStrings := func(ctx context.Context, ev hook.Event) error {
		if len(ev.Keys) == 0 {
			return nil
		}
		_, err := s.DeprecateTranslationStrings(ctx, ev.Keys)
		return err
	}
	exportItems := func(ctx context.Context, ev hook.Event) error {
		if ev.Collection == "" {
			return nil
		}
		_, err := s.ExportCollectionItems(ctx, ev.Collection, ev.Keys)
		return err
	}
	deprecateItems := func(ctx context.Context, ev hook.Event) error {
		if ev.Collection == "" || len(ev.Keys) == 0 {
			return nil
		}
		_, err := s.DeprecateCollectionItems(ctx, ev.Collection, ev.Keys)
		return err
	}

	for _, name := range []string{hook.SettingsCreate, hook.SettingsUpdate, hook.TranslationsCreate, hook.TranslationsUpdate} {
		reg.RegisterFunc(name, "localazy.export_translation_strings", exportStrings)
	}
	for _, name := range []string{hook.SettingsDelete, hook.TranslationsDelete} {
		reg.Register(name, hook.Handler{Name: "localazy.deprecate_translation_strings", BestEffort: true, Fn: deprecateStrings})
	}
	for _, name := range []string{hook.ItemsCreate, hook.ItemsUpdate} {
		reg.RegisterFunc(name, "localazy.export_items", exportItems)
	}
	reg.Register(hook.ItemsDelete, hook.Handler{Name: "localazy.deprecate_items", BestEffort: true, Fn: deprecateItems})
}
