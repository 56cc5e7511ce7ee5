// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-localazy/internal/langmap"
	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// Seed creates the default sync configuration and the language collection
// on a fresh database. Existing records are left untouched.
func Seed(ctx context.Context, s *Store, logger *slog.Logger) error {
	settings, err := s.FetchSettings(ctx)
	switch {
	case errors.Is(err, source.ErrNotFound):
		defaults := model.DefaultSettings()
		if err := s.SaveSettings(ctx, defaults); err != nil {
			return err
		}
		settings = &defaults
		logger.Info("created default sync settings")
	case err != nil:
		return fmt.Errorf("checking settings: %w", err)
	}

	if _, err := s.FetchContentTransferSetup(ctx); errors.Is(err, source.ErrNotFound) {
		if err := s.SaveContentTransferSetup(ctx, model.DefaultContentTransferSetup()); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("checking content transfer setup: %w", err)
	}

	if _, err := s.GetCollection(ctx, settings.LanguageCollection); err == nil {
		return nil
	} else if !errors.Is(err, source.ErrNotFound) {
		return err
	}

	if err := s.CreateCollection(ctx, Collection{
		Name:       settings.LanguageCollection,
		PrimaryKey: settings.LanguageCodeField,
		Note:       "Languages available for translated content",
	}); err != nil {
		return err
	}
	for _, f := range []model.Field{
		{Collection: settings.LanguageCollection, Field: settings.LanguageCodeField, Type: "string"},
		{Collection: settings.LanguageCollection, Field: "name", Type: "string"},
		{Collection: settings.LanguageCollection, Field: "direction", Type: "string"},
	} {
		if err := s.CreateField(ctx, f); err != nil {
			return err
		}
	}
	if _, err := s.CreateItem(ctx, settings.LanguageCollection, model.Item{
		settings.LanguageCodeField: settings.SourceLanguage,
		"name":                     langmap.DisplayName(settings.SourceLanguage),
		"direction":                "ltr",
	}); err != nil {
		return err
	}

	logger.Info("created language collection",
		"collection", settings.LanguageCollection,
		"source_language", settings.SourceLanguage,
	)
	return nil
}
