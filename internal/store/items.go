// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// expansion is a tree of relation fields to expand.
type expansion map[string]expansion

// parseFields splits query fields into the selected top-level fields and the
// relations to expand. all is true when every stored field is returned.
func parseFields(fields []string) (selected map[string]bool, all bool, exp expansion) {
	selected = map[string]bool{}
	exp = expansion{}
	all = len(fields) == 0
	for _, f := range fields {
		parts := strings.Split(f, ".")
		if parts[0] == "*" {
			all = true
			continue
		}
		selected[parts[0]] = true
		node := exp
		for _, p := range parts[:len(parts)-1] {
			next, ok := node[p]
			if !ok {
				next = expansion{}
				node[p] = next
			}
			node = next
		}
	}
	return selected, all, exp
}

// FetchItems returns the items of collection matching q.
func (s *Store) FetchItems(ctx context.Context, collection string, q source.Query) ([]model.Item, error) {
	coll, err := getCollection(ctx, s.db, collection)
	if err != nil {
		return nil, err
	}

	items, err := loadItems(ctx, s.db, collection, q.IDs, q.Limit)
	if err != nil {
		return nil, err
	}

	selected, all, exp := parseFields(q.Fields)
	if err := expand(ctx, s.db, coll, items, exp); err != nil {
		return nil, err
	}

	if !all {
		for _, item := range items {
			for k := range item {
				if !selected[k] && k != coll.PrimaryKey {
					delete(item, k)
				}
			}
		}
	}
	return items, nil
}

func loadItems(ctx context.Context, q DBTX, collection string, ids []string, limit int) ([]model.Item, error) {
	query := `SELECT id, data FROM items WHERE collection = ?`
	args := []any{collection}
	if len(ids) > 0 {
		query += ` AND id IN (?` + strings.Repeat(`, ?`, len(ids)-1) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY rowid`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading %s items: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		item := model.Item{}
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("decoding %s item %s: %w", collection, id, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// expand replaces relation fields of items with the related records.
// Alias fields of one-to-many relations become arrays of rows; many-to-one
// foreign keys become the referenced record when it exists.
func expand(ctx context.Context, q DBTX, coll *Collection, items []model.Item, exp expansion) error {
	if len(items) == 0 || len(exp) == 0 {
		return nil
	}

	aliases, err := oneToMany(ctx, q, coll.Name)
	if err != nil {
		return err
	}

	for field, nested := range exp {
		if rel, ok := aliases[field]; ok {
			if err := expandOneToMany(ctx, q, coll, items, field, rel, nested); err != nil {
				return err
			}
			continue
		}

		rel, err := manyToOne(ctx, q, coll.Name, field)
		if err != nil {
			return err
		}
		if rel != nil {
			if err := expandManyToOne(ctx, q, items, field, *rel, nested); err != nil {
				return err
			}
		}
	}
	return nil
}

func expandOneToMany(ctx context.Context, q DBTX, coll *Collection, items []model.Item, field string, rel model.Relation, nested expansion) error {
	junction, err := getCollection(ctx, q, rel.Collection)
	if err != nil {
		return err
	}
	rows, err := loadItems(ctx, q, junction.Name, nil, 0)
	if err != nil {
		return err
	}
	if err := expand(ctx, q, junction, rows, nested); err != nil {
		return err
	}

	byParent := make(map[string][]any)
	for _, row := range rows {
		parent := keyOf(row[rel.Field])
		byParent[parent] = append(byParent[parent], row)
	}
	for _, item := range items {
		related := byParent[keyOf(item[coll.PrimaryKey])]
		if related == nil {
			related = []any{}
		}
		item[field] = related
	}
	return nil
}

func expandManyToOne(ctx context.Context, q DBTX, items []model.Item, field string, rel model.Relation, nested expansion) error {
	target, err := getCollection(ctx, q, rel.RelatedCollection)
	if err != nil {
		return err
	}

	var ids []string
	for _, item := range items {
		if id := keyOf(item[field]); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	related, err := loadItems(ctx, q, target.Name, ids, 0)
	if err != nil {
		return err
	}
	if err := expand(ctx, q, target, related, nested); err != nil {
		return err
	}

	byID := make(map[string]model.Item, len(related))
	for _, r := range related {
		byID[keyOf(r[target.PrimaryKey])] = r
	}
	for _, item := range items {
		if r, ok := byID[keyOf(item[field])]; ok {
			item[field] = r
		}
	}
	return nil
}

// CreateItem stores a new item and its nested relation rows.
func (s *Store) CreateItem(ctx context.Context, collection string, data model.Item) (string, error) {
	var id string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.createItem(ctx, tx, collection, data)
		return err
	})
	return id, err
}

// UpdateItem merges data into an existing item.
func (s *Store) UpdateItem(ctx context.Context, collection, id string, data model.Item) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.updateItem(ctx, tx, collection, id, data)
	})
}

func (s *Store) createItem(ctx context.Context, tx DBTX, collection string, data model.Item) (string, error) {
	coll, err := getCollection(ctx, tx, collection)
	if err != nil {
		return "", err
	}
	aliases, err := oneToMany(ctx, tx, collection)
	if err != nil {
		return "", err
	}

	doc, nested := splitNested(data, aliases)
	id := keyOf(doc[coll.PrimaryKey])
	if id == "" {
		id = uuid.NewString()
		doc[coll.PrimaryKey] = id
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding %s item: %w", collection, err)
	}
	now := s.now()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO items (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		collection, id, string(raw), now, now); err != nil {
		return "", fmt.Errorf("creating %s item %s: %w", collection, id, err)
	}

	if err := s.applyNested(ctx, tx, id, nested, aliases); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) updateItem(ctx context.Context, tx DBTX, collection, id string, data model.Item) error {
	coll, err := getCollection(ctx, tx, collection)
	if err != nil {
		return err
	}
	existing, err := loadItems(ctx, tx, collection, []string{id}, 0)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return fmt.Errorf("%s item %s: %w", collection, id, source.ErrNotFound)
	}
	aliases, err := oneToMany(ctx, tx, collection)
	if err != nil {
		return err
	}

	doc, nested := splitNested(data, aliases)
	merged := existing[0]
	for k, v := range doc {
		if k == coll.PrimaryKey {
			continue
		}
		merged[k] = v
	}

	if len(doc) > 0 {
		raw, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("encoding %s item %s: %w", collection, id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
			string(raw), s.now(), collection, id); err != nil {
			return fmt.Errorf("updating %s item %s: %w", collection, id, err)
		}
	}

	return s.applyNested(ctx, tx, id, nested, aliases)
}

// splitNested separates alias relation payloads from stored fields.
func splitNested(data model.Item, aliases map[string]model.Relation) (model.Item, map[string]any) {
	doc := make(model.Item, len(data))
	nested := map[string]any{}
	for k, v := range data {
		if _, ok := aliases[k]; ok {
			nested[k] = v
			continue
		}
		doc[k] = v
	}
	return doc, nested
}

// applyNested writes relation rows given either as a list (rows carrying a
// primary key are updated, others created) or as {create, update, delete}.
func (s *Store) applyNested(ctx context.Context, tx DBTX, parentID string, nested map[string]any, aliases map[string]model.Relation) error {
	for field, payload := range nested {
		rel := aliases[field]
		junction, err := getCollection(ctx, tx, rel.Collection)
		if err != nil {
			return err
		}

		var creates, updates, deletes []any
		switch p := payload.(type) {
		case []any:
			for _, row := range p {
				if m, ok := row.(map[string]any); ok && keyOf(m[junction.PrimaryKey]) != "" {
					updates = append(updates, row)
				} else {
					creates = append(creates, row)
				}
			}
		case map[string]any:
			creates, _ = p["create"].([]any)
			updates, _ = p["update"].([]any)
			deletes, _ = p["delete"].([]any)
		case nil:
			continue
		default:
			return fmt.Errorf("field %s: unsupported relation payload %T", field, payload)
		}

		for _, row := range creates {
			m, ok := row.(map[string]any)
			if !ok {
				continue
			}
			m[rel.Field] = parentID
			if _, err := s.createItem(ctx, tx, junction.Name, m); err != nil {
				return err
			}
		}
		for _, row := range updates {
			m, ok := row.(map[string]any)
			if !ok {
				continue
			}
			if err := s.updateItem(ctx, tx, junction.Name, keyOf(m[junction.PrimaryKey]), m); err != nil {
				return err
			}
		}
		for _, id := range deletes {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM items WHERE collection = ? AND id = ?`, junction.Name, keyOf(id)); err != nil {
				return fmt.Errorf("deleting %s item: %w", junction.Name, err)
			}
		}
	}
	return nil
}

func keyOf(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case map[string]any:
		// Expanded records are keyed by their id.
		return keyOf(id["id"])
	default:
		return fmt.Sprint(id)
	}
}
