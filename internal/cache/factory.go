// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"
)

// Config selects and sizes the cache backend.
type Config struct {
	// RedisURL enables the Redis backend when set.
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	// MaxSize bounds the memory backend (0 = unlimited).
	MaxSize int
}

// New creates a Redis cache when RedisURL is set, otherwise a memory cache.
// If Redis is unreachable it logs a warning and falls back to memory.
func New(ctx context.Context, cfg Config) Cache {
	if cfg.RedisURL != "" {
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}

		rc, err := NewRedisCache(ctx, opts)
		if err == nil {
			slog.Info("response cache using redis", "prefix", opts.Prefix)
			return rc
		}
		slog.Warn("redis unavailable, falling back to memory cache", "error", err)
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: time.Minute,
	})
}
