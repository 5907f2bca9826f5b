package models

import "winestore/pkg/money"

// CartItem is one line of a visitor's pending selection. The display fields
// are denormalized copies taken from the product at add time.
type CartItem struct {
	ProductID uint         `json:"id"`
	Name      string       `json:"name"`
	Price     money.Amount `json:"price"`
	Image     string       `json:"image"`
	Type      string       `json:"type"`
	Quantity  int          `json:"quantity"`
}

// Cart holds a visitor's in-progress selection in insertion order, plus the
// derived total and item count. Total and ItemCount are never maintained
// incrementally; Recalculate rebuilds them from Items after every mutation.
type Cart struct {
	Items     []CartItem   `json:"items"`
	Total     money.Amount `json:"total"`
	ItemCount int          `json:"item_count"`
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// Recalculate recomputes Total and ItemCount from the current items.
func (c *Cart) Recalculate() {
	var total money.Amount
	count := 0
	for _, item := range c.Items {
		total += item.Price * money.Amount(item.Quantity)
		count += item.Quantity
	}
	c.Total = total
	c.ItemCount = count
}
