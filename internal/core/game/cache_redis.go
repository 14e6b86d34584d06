// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStatsCache implements [StatsCache] on Redis strings holding JSON.
type RedisStatsCache struct {
	client redis.Cmdable
}

// NewRedisStatsCache creates a Redis-backed dashboard cache.
func NewRedisStatsCache(client redis.Cmdable) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

/*
Get reads a cached dashboard.

Returns:
  - *Dashboard: The cached value, nil on a miss
  - bool: Whether the key was present
  - error: Connectivity or decoding failures
*/
func (cache *RedisStatsCache) Get(context context.Context, key string) (*Dashboard, bool, error) {
	payload, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis_stats_get_failed: %w", err)
	}

	dashboard := &Dashboard{}
	if err := json.Unmarshal(payload, dashboard); err != nil {
		return nil, false, fmt.Errorf("redis_stats_decode_failed: %w", err)
	}
	return dashboard, true, nil
}

// Set stores a dashboard with an expiry.
func (cache *RedisStatsCache) Set(context context.Context, key string, dashboard *Dashboard, ttl time.Duration) error {
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("redis_stats_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_stats_set_failed: %w", err)
	}
	return nil
}
