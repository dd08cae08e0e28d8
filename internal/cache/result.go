// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"shapecount/internal/models"
)

const (
	resultKeyPrefix = "result:"

	// DefaultResultTTL is used when the janitor TTL leaves room for it.
	DefaultResultTTL = time.Hour
)

// ResultTTLFor returns a result cache TTL that stays below the janitor TTL,
// so a cached response never points at a swept image. A janitor TTL of zero
// means the default janitor lifetime, which is above DefaultResultTTL.
func ResultTTLFor(janitorTTL time.Duration) time.Duration {
	if janitorTTL <= 0 || janitorTTL > 2*DefaultResultTTL {
		return DefaultResultTTL
	}
	return janitorTTL / 2
}

// ResultKey is the content address of an uploaded image.
func ResultKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ResultCache remembers the /upload response for an image digest so the
// same photo is not classified twice.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a result cache backed by the given Valkey client.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl == 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Get returns the cached response for key.
func (rc *ResultCache) Get(ctx context.Context, key string) (*models.UploadResponse, bool) {
	val, err := rc.client.Get(ctx, resultKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("result cache get error", "key", key, "error", err)
		return nil, false
	}

	var resp models.UploadResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		slog.Warn("result cache corrupt entry", "key", key, "error", err)
		rc.client.Del(ctx, resultKeyPrefix+key)
		return nil, false
	}
	return &resp, true
}

// Set stores a recognised response. Failures are not cached so a retry
// with a better classifier configuration gets another chance.
func (rc *ResultCache) Set(ctx context.Context, key string, resp *models.UploadResponse) {
	if !resp.Recognized() {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Warn("result cache marshal error", "key", key, "error", err)
		return
	}
	if err := rc.client.Set(ctx, resultKeyPrefix+key, data, rc.ttl).Err(); err != nil {
		slog.Warn("result cache set error", "key", key, "error", err)
	}
}

// Flush removes every cached result.
func (rc *ResultCache) Flush(ctx context.Context) int {
	return scanDelete(ctx, rc.client, resultKeyPrefix+"*")
}
