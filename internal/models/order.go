package models

import (
	"fmt"
	"time"

	"winestore/pkg/money"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipping  OrderStatus = "shipping"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// statusTransitions encodes the legal lifecycle: the happy path advances one
// stage at a time, cancellation branches off pending only, and delivered and
// cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipping},
	StatusShipping:  {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseStatus validates a raw status value against the recognized set.
func ParseStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := statusTransitions[status]; !ok {
		return "", fmt.Errorf("invalid order status: %q", s)
	}
	return status, nil
}

// IsValid reports whether the status is one of the five recognized values.
func (s OrderStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Label renders the status for display. Anything outside the recognized set
// renders as an explicit "unknown" indicator rather than passing through.
func (s OrderStatus) Label() string {
	if !s.IsValid() {
		return "unknown"
	}
	return string(s)
}

// OrderItem is a line item snapshot captured at submission time. Later
// catalog edits or deletions must not alter it.
type OrderItem struct {
	ID        uint         `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string       `json:"-" gorm:"index;type:varchar(64)"`
	ProductID uint         `json:"id"`
	Name      string       `json:"name" gorm:"type:varchar(200)"`
	Price     money.Amount `json:"price" gorm:"type:bigint"`
	Image     string       `json:"image" gorm:"type:varchar(500)"`
	Type      string       `json:"type" gorm:"type:varchar(100)"`
	Quantity  int          `json:"quantity"`
}

// CustomerInfo is the shipping and contact record entered at checkout.
type CustomerInfo struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required"`
	Notes         string `json:"notes,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// Order is a submitted, persisted purchase request.
type Order struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID         uint         `json:"user_id" gorm:"index"`
	Items          []OrderItem  `json:"items" gorm:"foreignKey:OrderID;references:ID"`
	CustomerInfo   CustomerInfo `json:"customer_info" gorm:"serializer:json"`
	Total          money.Amount `json:"total" gorm:"type:bigint"`
	Status         OrderStatus  `json:"status" gorm:"type:varchar(20)"`
	IdempotencyKey string       `json:"-" gorm:"index;type:varchar(64)"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
