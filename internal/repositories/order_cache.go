package repositories

import (
	"context"
	"time"

	"winestore/internal/models"
)

// CachedOrders is a timestamped snapshot of an order listing.
type CachedOrders struct {
	Orders   []models.Order `json:"orders"`
	CachedAt time.Time      `json:"cached_at"`
}

// OrderCache is a bounded, read-only fallback for order listings. It is
// refreshed on every successful database read and consulted only when the
// database read fails; it is never written through for order mutations.
type OrderCache interface {
	// Get returns the cached listing for key, or (nil, nil) when none exists.
	Get(ctx context.Context, key string) (*CachedOrders, error)
	// Put replaces the cached listing for key.
	Put(ctx context.Context, key string, orders []models.Order) error
}
