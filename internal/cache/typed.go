// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed stores JSON-encoded values of one type under a key namespace.
type Typed[T any] struct {
	cache     Cache
	namespace string
	ttl       time.Duration
}

// NewTyped creates a typed view of c. Keys are prefixed with namespace.
func NewTyped[T any](c Cache, namespace string, ttl time.Duration) *Typed[T] {
	return &Typed[T]{cache: c, namespace: namespace, ttl: ttl}
}

func (c *Typed[T]) key(k string) string {
	return c.namespace + ":" + k
}

// Get returns the cached value and true on a hit.
func (c *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	data, err := c.cache.Get(ctx, c.key(key))
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}

// Set stores value with the default TTL.
func (c *Typed[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, c.key(key), data, c.ttl)
}

// Delete removes a key.
func (c *Typed[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.key(key))
}

// Invalidate removes every key of the namespace.
func (c *Typed[T]) Invalidate(ctx context.Context) error {
	return c.cache.DeleteByPrefix(ctx, c.namespace+":")
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Cache write failures are ignored.
func (c *Typed[T]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	_ = c.Set(ctx, key, value)
	return value, nil
}
