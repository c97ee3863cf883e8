// Package cache provides RouteCache adapters: Redis for shared deployments,
// Badger for a single node with persistence, and an in-process map for tests
// and local runs.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

// DefaultKeyPrefix namespaces route plans in shared stores.
const DefaultKeyPrefix = "wildside:"

// RedisCache stores JSON-encoded plans with an optional expiry.
type RedisCache[P any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ ports.RouteCache[struct{}] = (*RedisCache[struct{}])(nil)

// NewRedis constructs a Redis-backed cache. A zero ttl keeps entries until evicted.
func NewRedis[P any](client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache[P] {
	return &RedisCache[P]{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache[P]) Get(ctx context.Context, key ports.RouteCacheKey) (P, bool, error) {
	var plan P
	raw, err := c.client.Get(ctx, c.prefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return plan, false, nil
	}
	if err != nil {
		return plan, false, ports.NewRouteCacheBackendError(err)
	}
	if err := json.Unmarshal(raw, &plan); err != nil {
		return plan, false, ports.NewRouteCacheSerializationError(err)
	}
	return plan, true, nil
}

func (c *RedisCache[P]) Put(ctx context.Context, key ports.RouteCacheKey, plan P) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return ports.NewRouteCacheSerializationError(err)
	}
	if err := c.client.Set(ctx, c.prefix+key.String(), raw, c.ttl).Err(); err != nil {
		return ports.NewRouteCacheBackendError(err)
	}
	return nil
}
