package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"winestore/internal/models"

	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// RedisCartStore persists carts as JSON blobs in Redis, one key per visitor.
// Abandoned carts expire after the configured TTL.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartStore creates a new instance of RedisCartStore.
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		ttl:    ttl,
	}
}

// Load restores the cart snapshot stored under key, if any.
func (s *RedisCartStore) Load(ctx context.Context, key string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", key, err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", key, err)
	}
	return &cart, nil
}

// Save writes the full cart snapshot and refreshes its TTL.
func (s *RedisCartStore) Save(ctx context.Context, key string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", key, err)
	}
	if err := s.client.Set(ctx, cartKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", key, err)
	}
	return nil
}

// Delete removes the cart stored under key.
func (s *RedisCartStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, cartKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", key, err)
	}
	return nil
}
