// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/ocms-localazy/internal/testutil"
)

func TestNew_Memory(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, MaxSize: 10}, testutil.TestLoggerSilent())
	defer func() { _ = c.Close() }()

	_, ok := c.(*MemoryCache)
	assert.True(t, ok)
}

func TestNew_FallsBackWhenRedisUnreachable(t *testing.T) {
	c := New(Config{RedisURL: "redis://127.0.0.1:1/0", DefaultTTL: time.Minute}, testutil.TestLoggerSilent())
	defer func() { _ = c.Close() }()

	_, ok := c.(*MemoryCache)
	assert.True(t, ok)
}

func TestNew_InvalidRedisURL(t *testing.T) {
	c := New(Config{RedisURL: "not a url"}, testutil.TestLoggerSilent())
	defer func() { _ = c.Close() }()

	_, ok := c.(*MemoryCache)
	assert.True(t, ok)
}
