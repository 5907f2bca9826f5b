package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"winestore/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	orderCacheKeyPrefix = "ordercache:"
	orderCacheTTL       = 15 * time.Minute
)

// RedisOrderCache stores order-listing snapshots in Redis with a short TTL,
// so the degrade path never serves arbitrarily stale data.
type RedisOrderCache struct {
	client *redis.Client
}

// NewRedisOrderCache creates a new instance of RedisOrderCache.
func NewRedisOrderCache(client *redis.Client) *RedisOrderCache {
	return &RedisOrderCache{client: client}
}

// Get returns the cached listing for key, if present.
func (c *RedisOrderCache) Get(ctx context.Context, key string) (*CachedOrders, error) {
	data, err := c.client.Get(ctx, orderCacheKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order cache %s: %w", key, err)
	}

	var cached CachedOrders
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode order cache %s: %w", key, err)
	}
	return &cached, nil
}

// Put replaces the cached listing for key with a fresh timestamped snapshot.
func (c *RedisOrderCache) Put(ctx context.Context, key string, orders []models.Order) error {
	data, err := json.Marshal(CachedOrders{Orders: orders, CachedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to encode order cache %s: %w", key, err)
	}
	if err := c.client.Set(ctx, orderCacheKeyPrefix+key, data, orderCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to write order cache %s: %w", key, err)
	}
	return nil
}
