// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store implements the content store and the persisted sync
// configuration on SQLite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/ocms-localazy/internal/source"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Store is the SQLite content store.
type Store struct {
	db            *sql.DB
	legacyStrings bool
	now           func() time.Time
}

var (
	_ source.Store     = (*Store)(nil)
	_ source.DataModel = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLegacyTranslationStrings keeps free-standing strings in the settings
// blob instead of the dedicated table.
func WithLegacyTranslationStrings(legacy bool) Option {
	return func(s *Store) { s.legacyStrings = legacy }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store on an opened and migrated database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
