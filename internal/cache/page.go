// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// fragmentKeyPrefix is the Valkey key prefix for rendered HTML fragments.
	fragmentKeyPrefix = "fragment:"

	// DefaultPageTTL is how long a rendered fragment stays cached.
	DefaultPageTTL = 30 * time.Minute
)

// PageCache caches rendered lesson HTML in Valkey so repeated page views
// skip the Markdown conversion.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML. Returns (nil, false) on a miss or error.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, fragmentKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, fragmentKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single fragment.
func (pc *PageCache) Invalidate(ctx context.Context, key string) {
	if err := pc.client.Del(ctx, fragmentKeyPrefix+key).Err(); err != nil {
		slog.Warn("page cache invalidate error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached fragments by scanning for the prefix.
// Called at startup since the embedded documents may differ between builds.
func (pc *PageCache) InvalidateAll(ctx context.Context) int {
	return scanDelete(ctx, pc.client, fragmentKeyPrefix+"*")
}

// scanDelete deletes every key matching pattern and returns the count.
func scanDelete(ctx context.Context, client *redis.Client, pattern string) int {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("cache scan error", "pattern", pattern, "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("cache bulk delete error", "pattern", pattern, "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("cache cleared", "pattern", pattern, "deleted", deleted)
	}
	return deleted
}
