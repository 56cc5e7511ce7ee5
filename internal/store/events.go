// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/ocms-localazy/internal/model"
)

// CreateEventParams holds the fields of a new event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// ListEventsParams pages through events, newest first.
type ListEventsParams struct {
	Category string // empty matches every category
	Limit    int64
	Offset   int64
}

// CreateEvent appends an event to the sync event log.
func (s *Store) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	arg.CreatedAt = arg.CreatedAt.UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_events (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.Metadata, arg.CreatedAt)
	if err != nil {
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		ID:        id,
		Level:     arg.Level,
		Category:  arg.Category,
		Message:   arg.Message,
		Metadata:  arg.Metadata,
		CreatedAt: arg.CreatedAt,
	}, nil
}

// ListEvents returns events ordered by creation time, newest first.
func (s *Store) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, level, category, message, metadata, created_at
		FROM sync_events
		WHERE ? = '' OR category = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		arg.Category, arg.Category, arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteEventsBefore removes events older than t and returns how many were removed.
func (s *Store) DeleteEventsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sync_events WHERE created_at < ?`, t.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	return res.RowsAffected()
}
