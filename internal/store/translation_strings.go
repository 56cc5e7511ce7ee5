// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// HasTranslationStringsCollection reports whether the dedicated table is in use.
func (s *Store) HasTranslationStringsCollection(context.Context) bool {
	return !s.legacyStrings
}

// FetchTranslationStrings returns every row of the dedicated table.
func (s *Store) FetchTranslationStrings(ctx context.Context) ([]model.TranslationStringRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, language, value FROM translation_strings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing translation strings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.TranslationStringRow
	for rows.Next() {
		var r model.TranslationStringRow
		if err := rows.Scan(&r.ID, &r.Key, &r.Language, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertTranslationString updates the value of the row with row.ID, or
// creates a new row when the id is empty.
func (s *Store) UpsertTranslationString(ctx context.Context, row model.TranslationStringRow) (model.TranslationStringRow, error) {
	if row.ID != "" {
		res, err := s.db.ExecContext(ctx,
			`UPDATE translation_strings SET value = ? WHERE id = ?`, row.Value, row.ID)
		if err != nil {
			return row, fmt.Errorf("updating translation string %s: %w", row.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return row, fmt.Errorf("translation string %s: %w", row.ID, source.ErrNotFound)
		}
		err = s.db.QueryRowContext(ctx,
			`SELECT id, key, language, value FROM translation_strings WHERE id = ?`, row.ID).
			Scan(&row.ID, &row.Key, &row.Language, &row.Value)
		return row, err
	}

	row.ID = uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_strings (id, key, language, value) VALUES (?, ?, ?, ?)`,
		row.ID, row.Key, row.Language, row.Value); err != nil {
		return row, fmt.Errorf("creating translation string %s/%s: %w", row.Key, row.Language, err)
	}
	return row, nil
}

// FetchLegacyTranslationStrings returns the strings kept in the settings blob.
func (s *Store) FetchLegacyTranslationStrings(ctx context.Context) ([]model.TranslationString, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT translation_strings FROM app_settings WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.TranslationString{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading legacy translation strings: %w", err)
	}

	var strs []model.TranslationString
	if err := json.Unmarshal([]byte(raw), &strs); err != nil || strs == nil {
		return []model.TranslationString{}, nil
	}
	return strs, nil
}

// SaveLegacyTranslationStrings replaces the strings kept in the settings blob.
func (s *Store) SaveLegacyTranslationStrings(ctx context.Context, strs []model.TranslationString) error {
	if strs == nil {
		strs = []model.TranslationString{}
	}
	raw, err := json.Marshal(strs)
	if err != nil {
		return fmt.Errorf("encoding legacy translation strings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, translation_strings) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET translation_strings = excluded.translation_strings`,
		string(raw))
	if err != nil {
		return fmt.Errorf("saving legacy translation strings: %w", err)
	}
	return nil
}
