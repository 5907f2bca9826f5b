package repositories

import (
	"context"

	"winestore/internal/models"
)

// CartStore is the persistence boundary for per-visitor cart state. Carts
// are written in full after every mutation and restored verbatim on load.
type CartStore interface {
	// Load returns the cart stored under key, or (nil, nil) when none exists.
	Load(ctx context.Context, key string) (*models.Cart, error)
	// Save writes the full cart snapshot under key.
	Save(ctx context.Context, key string, cart *models.Cart) error
	// Delete removes the cart stored under key. Missing keys are a no-op.
	Delete(ctx context.Context, key string) error
}
