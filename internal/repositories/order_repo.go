package repositories

import (
	"winestore/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByUserID(userID uint) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	// GetByIdempotencyKey returns the order previously created with the given
	// key, or (nil, nil) when no such order exists.
	GetByIdempotencyKey(key string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
	// Delete removes an order and its line items.
	Delete(id string) error
}
