// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// FetchSettings returns the sync settings or source.ErrNotFound.
func (s *Store) FetchSettings(ctx context.Context) (*model.Settings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sync_settings WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings: %w", source.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	var settings model.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings replaces the sync settings.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sync_settings (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(raw), s.now())
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// FetchContentTransferSetup returns the content transfer setup or source.ErrNotFound.
func (s *Store) FetchContentTransferSetup(ctx context.Context) (*model.ContentTransferSetup, error) {
	var setup model.ContentTransferSetup
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled_fields, translation_strings FROM content_transfer_setup WHERE id = 1`).
		Scan(&setup.EnabledFields, &setup.TranslationStrings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content transfer setup: %w", source.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading content transfer setup: %w", err)
	}
	return &setup, nil
}

// SaveContentTransferSetup replaces the content transfer setup.
func (s *Store) SaveContentTransferSetup(ctx context.Context, setup model.ContentTransferSetup) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_transfer_setup (id, enabled_fields, translation_strings, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			enabled_fields = excluded.enabled_fields,
			translation_strings = excluded.translation_strings,
			updated_at = excluded.updated_at`,
		setup.EnabledFields, setup.TranslationStrings, s.now())
	if err != nil {
		return fmt.Errorf("saving content transfer setup: %w", err)
	}
	return nil
}

// FetchLocalazyData returns the connected project data or source.ErrNotFound.
func (s *Store) FetchLocalazyData(ctx context.Context) (*model.LocalazyData, error) {
	var d model.LocalazyData
	err := s.db.QueryRowContext(ctx, `
		SELECT access_token, user_id, user_name, org_id, project_id, project_name, project_url
		FROM localazy_data WHERE id = 1`).
		Scan(&d.AccessToken, &d.UserID, &d.UserName, &d.OrgID, &d.ProjectID, &d.ProjectName, &d.ProjectURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("localazy data: %w", source.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading localazy data: %w", err)
	}
	return &d, nil
}

// SaveLocalazyData replaces the connected project data.
func (s *Store) SaveLocalazyData(ctx context.Context, d model.LocalazyData) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO localazy_data (id, access_token, user_id, user_name, org_id, project_id, project_name, project_url, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			access_token = excluded.access_token,
			user_id = excluded.user_id,
			user_name = excluded.user_name,
			org_id = excluded.org_id,
			project_id = excluded.project_id,
			project_name = excluded.project_name,
			project_url = excluded.project_url,
			updated_at = excluded.updated_at`,
		d.AccessToken, d.UserID, d.UserName, d.OrgID, d.ProjectID, d.ProjectName, d.ProjectURL, s.now())
	if err != nil {
		return fmt.Errorf("saving localazy data: %w", err)
	}
	return nil
}
