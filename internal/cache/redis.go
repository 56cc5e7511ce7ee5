// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint used when walking keys.
const scanBatch = 500

// RedisCache is a Redis-backed cache shared between sync instances, so a
// settings change on one node invalidates cached schemas on all of them.
type RedisCache struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// RedisCacheOptions configures the Redis cache.
type RedisCacheOptions struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "locsync:")
	Prefix string

	DefaultTTL  time.Duration
	PoolSize    int
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

// DefaultRedisCacheOptions returns the options used when only a URL is set.
func DefaultRedisCacheOptions() RedisCacheOptions {
	return RedisCacheOptions{
		Prefix:      "locsync:",
		DefaultTTL:  5 * time.Minute,
		PoolSize:    10,
		DialTimeout: 5 * time.Second,
		IOTimeout:   3 * time.Second,
	}
}

// NewRedisCache connects to the Redis server at opts.URL and verifies the
// connection.
func NewRedisCache(opts RedisCacheOptions) (*RedisCache, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}
	def := DefaultRedisCacheOptions()
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = def.DialTimeout
	}

	ro, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	ro.DialTimeout = opts.DialTimeout
	if opts.PoolSize > 0 {
		ro.PoolSize = opts.PoolSize
	}
	if opts.IOTimeout > 0 {
		ro.ReadTimeout = opts.IOTimeout
		ro.WriteTimeout = opts.IOTimeout
	}

	client := redis.NewClient(ro)
	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisCacheFromClient(client, opts.Prefix, opts.DefaultTTL), nil
}

// NewRedisCacheFromClient wraps an existing client, which may be a
// sentinel or cluster client. The cache owns the client and closes it.
func NewRedisCacheFromClient(client redis.UniversalClient, prefix string, defaultTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	c.hits.Add(1)
	return val, nil
}

// Set stores a value. A non-positive ttl uses the default TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	c.sets.Add(1)
	return nil
}

// Delete removes a key from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if err := c.client.Unlink(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.unlinkMatching(ctx, c.key(prefix)+"*")
}

// Clear removes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.unlinkMatching(ctx, c.prefix+"*")
}

// unlinkMatching unlinks keys matching pattern, one pipeline per SCAN page.
func (c *RedisCache) unlinkMatching(ctx context.Context, pattern string) error {
	err := c.scan(ctx, pattern, func(keys []string) error {
		_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
			p.Unlink(ctx, keys...)
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("redis unlink %s: %w", pattern, err)
	}
	return nil
}

// scan calls fn with each non-empty page of keys matching pattern.
func (c *RedisCache) scan(ctx context.Context, pattern string, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

// Close closes the Redis connection. Further calls return ErrCacheClosed.
func (c *RedisCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		return c.client.Close()
	}
	return nil
}

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.client.Ping(ctx).Err()
}

// Stats returns the local counters. Items counts keys under the prefix and
// is -1 when Redis cannot be scanned.
func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	items := 0
	err := c.scan(ctx, c.prefix+"*", func(keys []string) error {
		items += len(keys)
		return nil
	})
	if err != nil {
		items = -1
	}

	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Backend: "redis",
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   items,
		HitRate: hitRate(hits, misses),
	}
}

var (
	_ Cache         = (*RedisCache)(nil)
	_ StatsProvider = (*RedisCache)(nil)
	_ Pinger        = (*RedisCache)(nil)
)
