// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// result.go provides a Valkey-backed query-result cache (L2). When a
// category query has been answered once, the encoded JSON result is kept
// in Valkey so subsequent identical requests skip the document load and
// the filter/sort/paginate pass. A nil *ResultCache is valid and disables
// caching, so the service runs unchanged when Valkey is not configured.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// resultKeyPrefix is the Valkey key prefix for cached query results.
	resultKeyPrefix = "query:"

	// DefaultResultTTL is how long a query result stays cached.
	DefaultResultTTL = 5 * time.Minute
)

// ResultCache manages encoded query results in Valkey.
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

// Get retrieves a cached result. Returns false on miss or when the cache
// is disabled.
func (rc *ResultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}
	val, err := rc.client.Get(ctx, resultKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("result cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("result cache hit", "key", key)
	return val, true
}

// Set stores an encoded result with the configured TTL.
func (rc *ResultCache) Set(ctx context.Context, key string, data []byte) {
	if rc == nil {
		return
	}
	if err := rc.client.Set(ctx, resultKeyPrefix+key, data, rc.ttl).Err(); err != nil {
		slog.Warn("result cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached result by scanning for the prefix.
// Called after a sync rewrites the document, since any result could be
// affected.
func (rc *ResultCache) InvalidateAll(ctx context.Context) {
	if rc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, resultKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("result cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("result cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("result cache cleared", "deleted", deleted)
	}
}
