// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// Collection is a content collection.
type Collection struct {
	Name       string `json:"collection"`
	PrimaryKey string `json:"primary_key"`
	Note       string `json:"note,omitempty"`
}

// CreateCollection registers a collection. An empty primary key defaults to "id".
func (s *Store) CreateCollection(ctx context.Context, c Collection) error {
	if c.PrimaryKey == "" {
		c.PrimaryKey = "id"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, primary_key, note, created_at) VALUES (?, ?, ?, ?)`,
		c.Name, c.PrimaryKey, c.Note, s.now())
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", c.Name, err)
	}
	return nil
}

// GetCollection returns a collection or source.ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, name string) (*Collection, error) {
	return getCollection(ctx, s.db, name)
}

func getCollection(ctx context.Context, q DBTX, name string) (*Collection, error) {
	var c Collection
	err := q.QueryRowContext(ctx,
		`SELECT name, primary_key, note FROM collections WHERE name = ?`, name).
		Scan(&c.Name, &c.PrimaryKey, &c.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s: %w", name, source.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading collection %s: %w", name, err)
	}
	return &c, nil
}

// ListCollections returns every collection ordered by name.
func (s *Store) ListCollections(ctx context.Context) ([]Collection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, primary_key, note FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.Name, &c.PrimaryKey, &c.Note); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateField creates or replaces a field definition.
func (s *Store) CreateField(ctx context.Context, f model.Field) error {
	var maxLength sql.NullInt64
	if f.MaxLength != nil {
		maxLength = sql.NullInt64{Int64: int64(*f.MaxLength), Valid: true}
	}
	typ := f.Type
	if typ == "" {
		typ = "string"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fields (collection, field, type, special, max_length, comment, sort)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COUNT(*) FROM fields WHERE collection = ?))
		ON CONFLICT (collection, field) DO UPDATE SET
			type = excluded.type,
			special = excluded.special,
			max_length = excluded.max_length,
			comment = excluded.comment`,
		f.Collection, f.Field, typ, f.Special, maxLength, f.Comment, f.Collection)
	if err != nil {
		return fmt.Errorf("creating field %s.%s: %w", f.Collection, f.Field, err)
	}
	return nil
}

// GetFieldsForCollection returns the fields of collection in creation order.
func (s *Store) GetFieldsForCollection(ctx context.Context, collection string) ([]model.Field, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, field, type, special, max_length, comment
		FROM fields WHERE collection = ? ORDER BY sort, field`, collection)
	if err != nil {
		return nil, fmt.Errorf("listing fields of %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Field
	for rows.Next() {
		var (
			f         model.Field
			maxLength sql.NullInt64
		)
		if err := rows.Scan(&f.Collection, &f.Field, &f.Type, &f.Special, &maxLength, &f.Comment); err != nil {
			return nil, err
		}
		if maxLength.Valid {
			n := int(maxLength.Int64)
			f.MaxLength = &n
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateRelation registers a relation from r.Collection.r.Field to
// r.RelatedCollection. OneField names the alias field on the related side.
func (s *Store) CreateRelation(ctx context.Context, r model.Relation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relations (collection, field, related_collection, one_field, junction_field)
		VALUES (?, ?, ?, ?, ?)`,
		r.Collection, r.Field, r.RelatedCollection, r.OneField, r.JunctionField)
	if err != nil {
		return fmt.Errorf("creating relation %s.%s: %w", r.Collection, r.Field, err)
	}
	return nil
}

// GetRelationsForField returns the relation owning field, either as the
// many side or as the alias of the one side. When that relation has a
// junction field, the relation from the junction to its target follows.
func (s *Store) GetRelationsForField(ctx context.Context, collection, field string) ([]model.Relation, error) {
	out, err := queryRelations(ctx, s.db, `
		SELECT collection, field, related_collection, one_field, junction_field
		FROM relations
		WHERE (collection = ? AND field = ?) OR (related_collection = ? AND one_field = ?)
		ORDER BY id`, collection, field, collection, field)
	if err != nil {
		return nil, fmt.Errorf("relations of %s.%s: %w", collection, field, err)
	}
	if len(out) == 0 || out[0].JunctionField == "" {
		return out, nil
	}

	secondary, err := queryRelations(ctx, s.db, `
		SELECT collection, field, related_collection, one_field, junction_field
		FROM relations WHERE collection = ? AND field = ?`, out[0].Collection, out[0].JunctionField)
	if err != nil {
		return nil, fmt.Errorf("junction relation of %s.%s: %w", collection, field, err)
	}
	return append(out, secondary...), nil
}

// oneToMany returns the alias fields of collection keyed by field name.
func oneToMany(ctx context.Context, q DBTX, collection string) (map[string]model.Relation, error) {
	rels, err := queryRelations(ctx, q, `
		SELECT collection, field, related_collection, one_field, junction_field
		FROM relations WHERE related_collection = ? AND one_field != ''`, collection)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Relation, len(rels))
	for _, r := range rels {
		out[r.OneField] = r
	}
	return out, nil
}

// manyToOne returns the relation stored on collection.field, if any.
func manyToOne(ctx context.Context, q DBTX, collection, field string) (*model.Relation, error) {
	rels, err := queryRelations(ctx, q, `
		SELECT collection, field, related_collection, one_field, junction_field
		FROM relations WHERE collection = ? AND field = ?`, collection, field)
	if err != nil || len(rels) == 0 {
		return nil, err
	}
	return &rels[0], nil
}

func queryRelations(ctx context.Context, q DBTX, query string, args ...any) ([]model.Relation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Relation
	for rows.Next() {
		var r model.Relation
		if err := rows.Scan(&r.Collection, &r.Field, &r.RelatedCollection, &r.OneField, &r.JunctionField); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
