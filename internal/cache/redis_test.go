// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	url := os.Getenv("LOCSYNC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: LOCSYNC_TEST_REDIS_URL not set")
	}
	return url
}

func newTestRedisCache(t *testing.T) *RedisCache {
	url := skipIfNoRedis(t)
	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = "locsync-test:"
	opts.DefaultTTL = time.Minute

	c, err := NewRedisCache(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		_ = c.Close()
	})
	require.NoError(t, c.Clear(context.Background()))
	return c
}

func TestRedisCache_Basic(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "schema:a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "schema:b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "project:p", []byte("3"), 0))

	require.NoError(t, c.DeleteByPrefix(ctx, "schema:"))
	assert.Equal(t, 1, c.Stats().Items)
	assert.Equal(t, "redis", c.Stats().Backend)
}

func TestNewRedisCache_RequiresURL(t *testing.T) {
	_, err := NewRedisCache(RedisCacheOptions{})
	assert.Error(t, err)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(RedisCacheOptions{URL: "http://not-redis"})
	assert.ErrorContains(t, err, "parsing redis URL")
}

func TestRedisCache_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	c := NewRedisCacheFromClient(client, "locsync-test:", time.Minute)
	ctx := context.Background()

	assert.Error(t, c.Ping(ctx))
	assert.Equal(t, -1, c.Stats().Items)

	require.NoError(t, c.Close())
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, c.DeleteByPrefix(ctx, "schema:"), ErrCacheClosed)
	assert.NoError(t, c.Close())
}
