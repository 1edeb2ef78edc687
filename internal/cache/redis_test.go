// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	url := os.Getenv("FOLIO_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: FOLIO_TEST_REDIS_URL not set")
	}
	return url
}

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	opts := DefaultRedisCacheOptions()
	opts.URL = skipIfNoRedis(t)
	opts.Prefix = "folio-test:"
	opts.DefaultTTL = time.Minute

	c, err := NewRedisCache(context.Background(), opts)
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

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	has, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_ClearOnlyTouchesPrefix(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.client.Set(ctx, "unrelated-key", "x", time.Minute).Err())
	t.Cleanup(func() { c.client.Del(context.Background(), "unrelated-key") })

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Clear(ctx))

	has, _ := c.Has(ctx, "a")
	assert.False(t, has)
	n, err := c.client.Exists(ctx, "unrelated-key").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisCache_Stats(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "nope")

	stats := c.Stats()
	assert.Equal(t, "redis", stats.Backend)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	require.NoError(t, c.Ping(ctx))
}

func TestNewRedisCache_RequiresURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisCacheOptions{})
	assert.Error(t, err)
}
