// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(maxSize int) (*MemoryCache, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute, MaxSize: maxSize})
	c.now = func() time.Time { return now }
	return c, &now
}

func TestMemoryCache_GetSet(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrCacheMiss))

	value := []byte("hello")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'J'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got[0] = 'X'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, "hello", string(again))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, now := newTestMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))
	require.NoError(t, c.Set(ctx, "default", []byte("v"), 0))

	*now = now.Add(2 * time.Second)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "default")
	assert.NoError(t, err)

	*now = now.Add(time.Minute)
	_, err = c.Get(ctx, "default")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_EvictsOldestAtCapacity(t *testing.T) {
	c, now := newTestMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	*now = now.Add(time.Millisecond)
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	*now = now.Add(time.Millisecond)
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
	assert.Equal(t, 2, c.Stats().Items)
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "schema:articles", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "schema:pages", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "project:p1", []byte("3"), 0))

	require.NoError(t, c.DeleteByPrefix(ctx, "schema:"))
	assert.Equal(t, 1, c.Stats().Items)

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Stats().Items)
}

func TestMemoryCache_Stats(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "nope")

	s := c.Stats()
	assert.Equal(t, "memory", s.Backend)
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, int64(1), s.Sets)
	assert.InDelta(t, 50.0, s.HitRate, 0.001)
}

func TestMemoryCache_Closed(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, c.Set(context.Background(), "k", nil, 0), ErrCacheClosed)
}
