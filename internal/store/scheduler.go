// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/ocms-localazy/internal/source"
)

// GetSchedulerOverride returns the persisted schedule of a job.
func (s *Store) GetSchedulerOverride(ctx context.Context, src, name string) (string, error) {
	var schedule string
	err := s.db.QueryRowContext(ctx,
		`SELECT override_schedule FROM scheduler_overrides WHERE source = ? AND name = ?`,
		src, name).Scan(&schedule)
	if errors.Is(err, sql.ErrNoRows) {
		return "", source.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading schedule override %s:%s: %w", src, name, err)
	}
	return schedule, nil
}

// UpsertSchedulerOverride persists the schedule of a job.
func (s *Store) UpsertSchedulerOverride(ctx context.Context, src, name, schedule string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduler_overrides (source, name, override_schedule, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (source, name) DO UPDATE SET
			override_schedule = excluded.override_schedule,
			updated_at = excluded.updated_at`,
		src, name, schedule, s.now().UTC())
	if err != nil {
		return fmt.Errorf("saving schedule override %s:%s: %w", src, name, err)
	}
	return nil
}

// DeleteSchedulerOverride removes the persisted schedule of a job.
func (s *Store) DeleteSchedulerOverride(ctx context.Context, src, name string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM scheduler_overrides WHERE source = ? AND name = ?`, src, name)
	if err != nil {
		return fmt.Errorf("deleting schedule override %s:%s: %w", src, name, err)
	}
	return nil
}
