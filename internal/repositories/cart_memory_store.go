package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"winestore/internal/models"
)

// MemoryCartStore is an in-memory implementation of CartStore, used in tests
// and when no Redis instance is configured. Carts are kept as serialized
// snapshots so load/save behave exactly like the Redis store.
type MemoryCartStore struct {
	carts map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryCartStore creates a new instance of MemoryCartStore.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[string][]byte),
	}
}

// Load restores the cart snapshot stored under key, if any.
func (s *MemoryCartStore) Load(_ context.Context, key string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.carts[key]
	if !ok {
		return nil, nil
	}
	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", key, err)
	}
	return &cart, nil
}

// Save writes the full cart snapshot.
func (s *MemoryCartStore) Save(_ context.Context, key string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = data
	return nil
}

// Delete removes the cart stored under key.
func (s *MemoryCartStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
