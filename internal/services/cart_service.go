package services

import (
	"context"
	"fmt"

	"winestore/internal/models"
	"winestore/internal/repositories"
)

// CartService maintains each visitor's pending purchase selection. State
// lives in the CartStore; every mutation loads the cart, applies the change,
// recomputes the derived totals from the items and writes the full snapshot
// back.
type CartService struct {
	store       repositories.CartStore
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.CartStore, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		store:       store,
		productRepo: productRepo,
	}
}

// GetCart returns the visitor's cart. A missing cart is an empty cart, not
// an error. Persisted snapshots are restored verbatim, stored totals included.
func (s *CartService) GetCart(ctx context.Context, key string) (*models.Cart, error) {
	cart, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return models.NewCart(), nil
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// AddItem adds one unit of the given product. If the product is already in
// the cart its quantity is incremented; otherwise a new line is appended
// with the product's display fields copied at add time.
func (s *CartService) AddItem(ctx context.Context, key string, productID uint) (*models.Cart, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("cannot add product %d to cart: %w", productID, err)
	}

	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Type:      product.Type,
			Quantity:  1,
		})
	}

	cart.Recalculate()
	if err := s.store.Save(ctx, key, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity sets an item's quantity to the given absolute value. A
// quantity of zero or less removes the item entirely. An unknown product ID
// is a no-op.
func (s *CartService) UpdateQuantity(ctx context.Context, key string, productID uint, quantity int) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		cart.Items = removeCartItem(cart.Items, productID)
	} else {
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Quantity = quantity
				break
			}
		}
	}

	cart.Recalculate()
	if err := s.store.Save(ctx, key, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem deletes the item with the given product ID if present.
func (s *CartService) RemoveItem(ctx context.Context, key string, productID uint) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return nil, err
	}

	cart.Items = removeCartItem(cart.Items, productID)

	cart.Recalculate()
	if err := s.store.Save(ctx, key, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart and resets its totals to zero.
func (s *CartService) Clear(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

func removeCartItem(items []models.CartItem, productID uint) []models.CartItem {
	filtered := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
