// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "locsync-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if _, err := store.Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// TestMemoryDB creates a migrated in-memory SQLite database for testing.
// The pool is limited to one connection so every query sees the same database.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := store.Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestStore returns a store on a fresh test database, seeded with the
// default settings and the language collection.
func TestStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()

	db, cleanup := TestDB(t)
	t.Cleanup(cleanup)

	s := store.New(db, opts...)
	if err := store.Seed(context.Background(), s, TestLoggerSilent()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return s
}

// Article fixture names.
const (
	ArticlesCollection    = "articles"
	ArticlesTranslations  = "articles_translations"
	ArticleTitleMaxLength = 80
)

// SeedLanguages adds languages to the language collection.
func SeedLanguages(t *testing.T, s *store.Store, codes ...string) {
	t.Helper()
	ctx := context.Background()
	for _, code := range codes {
		if _, err := s.CreateItem(ctx, "languages", model.Item{"code": code, "name": code}); err != nil {
			t.Fatalf("creating language %s: %v", code, err)
		}
	}
}

// SeedArticles creates an articles collection translated through the
// articles_translations junction, with title and body as translatable fields.
func SeedArticles(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seeding articles: %v", err)
		}
	}

	titleMax := ArticleTitleMaxLength
	must(s.CreateCollection(ctx, store.Collection{Name: ArticlesCollection}))
	must(s.CreateCollection(ctx, store.Collection{Name: ArticlesTranslations}))
	must(s.CreateField(ctx, model.Field{Collection: ArticlesCollection, Field: "id", Type: "uuid"}))
	must(s.CreateField(ctx, model.Field{Collection: ArticlesCollection, Field: "status"}))
	must(s.CreateField(ctx, model.Field{
		Collection: ArticlesCollection, Field: "translations", Type: "alias", Special: model.SpecialTranslations,
	}))
	must(s.CreateField(ctx, model.Field{Collection: ArticlesTranslations, Field: "id", Type: "uuid"}))
	must(s.CreateField(ctx, model.Field{Collection: ArticlesTranslations, Field: "articles_id"}))
	must(s.CreateField(ctx, model.Field{Collection: ArticlesTranslations, Field: "languages_code"}))
	must(s.CreateField(ctx, model.Field{
		Collection: ArticlesTranslations, Field: "title", MaxLength: &titleMax, Comment: "Article headline",
	}))
	must(s.CreateField(ctx, model.Field{Collection: ArticlesTranslations, Field: "body", Type: "text"}))
	must(s.CreateRelation(ctx, model.Relation{
		Collection:        ArticlesTranslations,
		Field:             "articles_id",
		RelatedCollection: ArticlesCollection,
		OneField:          "translations",
		JunctionField:     "languages_code",
	}))
	must(s.CreateRelation(ctx, model.Relation{
		Collection:        ArticlesTranslations,
		Field:             "languages_code",
		RelatedCollection: "languages",
		JunctionField:     "articles_id",
	}))
}

// CreateArticle stores an article with one translation row per language.
func CreateArticle(t *testing.T, s *store.Store, id string, rows map[string]model.Item) {
	t.Helper()
	var translations []any
	for lang, row := range rows {
		r := model.Item{"languages_code": lang}
		for k, v := range row {
			r[k] = v
		}
		translations = append(translations, r)
	}
	if _, err := s.CreateItem(context.Background(), ArticlesCollection, model.Item{
		"id":           id,
		"status":       "published",
		"translations": map[string]any{"create": translations},
	}); err != nil {
		t.Fatalf("creating article %s: %v", id, err)
	}
}
