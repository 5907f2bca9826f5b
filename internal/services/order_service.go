package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"winestore/internal/models"
	"winestore/internal/repositories"
	"winestore/pkg/money"

	"github.com/google/uuid"
)

// Sentinel errors surfaced by order operations.
var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingCustomerInfo = errors.New("customer info is incomplete")
	ErrForbidden           = errors.New("not allowed for this order")
	ErrInvalidTransition   = errors.New("illegal status transition")
)

// EventPublisher publishes order lifecycle events. Satisfied by
// *rabbitmq.Client; mocked in tests.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderService handles the checkout workflow and the order lifecycle.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	cartService *CartService
	orderCache  repositories.OrderCache
	publisher   EventPublisher
	fee         money.Amount
}

// OrderServiceConfig carries the checkout constants.
type OrderServiceConfig struct {
	// ShippingFee is the flat fee added to every order total. It is a
	// constant per deployment, not computed from weight or distance.
	ShippingFee money.Amount
}

// NewOrderService creates a new OrderService. orderCache and publisher may
// be nil; both are best-effort collaborators.
func NewOrderService(orderRepo repositories.OrderRepository, cartService *CartService, orderCache repositories.OrderCache, publisher EventPublisher, cfg OrderServiceConfig) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartService: cartService,
		orderCache:  orderCache,
		publisher:   publisher,
		fee:         cfg.ShippingFee,
	}
}

// Checkout converts the visitor's cart plus the submitted customer info into
// a durable order. The cart is cleared only after the create has been
// confirmed; on any failure it is left untouched so the visitor can retry.
// A client-generated idempotency key dedupes retried submissions.
func (s *OrderService) Checkout(ctx context.Context, userID uint, cartKey string, info models.CustomerInfo, idempotencyKey string) (*models.Order, error) {
	if info.Name == "" || info.Email == "" || info.Phone == "" || info.Address == "" {
		return nil, ErrMissingCustomerInfo
	}

	// A retried submission whose first attempt actually succeeded must not
	// create a duplicate order. The replay check runs before the cart is
	// consulted: the successful first attempt already cleared it.
	if idempotencyKey != "" {
		existing, err := s.orderRepo.GetByIdempotencyKey(idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency lookup failed: %w", err)
		}
		if existing != nil {
			log.Printf("Checkout replay for key %s, returning order %s", idempotencyKey, existing.ID)
			return existing, nil
		}
	}

	cart, err := s.cartService.GetCart(ctx, cartKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Snapshot the cart items. Later catalog edits or deletions must never
	// alter this order's recorded lines.
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		items = append(items, models.OrderItem{
			ProductID: ci.ProductID,
			Name:      ci.Name,
			Price:     ci.Price,
			Image:     ci.Image,
			Type:      ci.Type,
			Quantity:  ci.Quantity,
		})
	}

	order := &models.Order{
		ID:             "ORD-" + uuid.New().String(),
		UserID:         userID,
		Items:          items,
		CustomerInfo:   info,
		Total:          cart.Total + s.fee,
		Status:         models.StatusPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now(),
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publishEvent("order.created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
		"total":    order.Total,
	})

	// Clearing is gated strictly behind confirmed success. A failed clear is
	// logged, not fatal; the order already exists.
	if err := s.cartService.Clear(ctx, cartKey); err != nil {
		log.Printf("Warning: order %s created but cart %s not cleared: %v", order.ID, cartKey, err)
	}

	return order, nil
}

// ListOrders returns all orders, or one user's orders when userID is given.
// A successful read refreshes the fallback cache; a failed read is served
// from that cache when possible, as an explicit degrade for read-only views.
func (s *OrderService) ListOrders(ctx context.Context, userID *uint) ([]models.Order, error) {
	cacheKey := "all"
	if userID != nil {
		cacheKey = fmt.Sprintf("user:%d", *userID)
	}

	var orders []models.Order
	var err error
	if userID != nil {
		orders, err = s.orderRepo.GetByUserID(*userID)
	} else {
		orders, err = s.orderRepo.GetAll()
	}

	if err != nil {
		if s.orderCache != nil {
			cached, cacheErr := s.orderCache.Get(ctx, cacheKey)
			if cacheErr == nil && cached != nil {
				log.Printf("Order listing %s served from cache (db error: %v, cached at %s)",
					cacheKey, err, cached.CachedAt.Format(time.RFC3339))
				return cached.Orders, nil
			}
		}
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if s.orderCache != nil {
		if cacheErr := s.orderCache.Put(ctx, cacheKey, orders); cacheErr != nil {
			log.Printf("Warning: failed to refresh order cache %s: %v", cacheKey, cacheErr)
		}
	}
	return orders, nil
}

// GetOrder retrieves one order, enforcing that non-admins only see their own.
func (s *OrderService) GetOrder(id string, actorID uint, actorRole string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && order.UserID != actorID {
		return nil, ErrForbidden
	}
	return order, nil
}

// UpdateOrderStatus applies a status transition. The raw value is validated
// before anything reaches storage; transition legality is enforced; admins
// may drive any legal transition, customers only the cancellation of their
// own still-pending order.
func (s *OrderService) UpdateOrderStatus(id string, rawStatus string, actorID uint, actorRole string) error {
	next, err := models.ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}

	if actorRole != models.RoleAdmin {
		if order.UserID != actorID || next != models.StatusCancelled {
			return ErrForbidden
		}
	}

	if !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	if err := s.orderRepo.UpdateStatus(id, next); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}

	s.publishEvent("order.status_updated", map[string]interface{}{
		"order_id": id,
		"status":   next,
	})
	return nil
}

// DeleteOrder removes an order and its line items. Callers must have already
// passed the admin gate; the handler routes enforce it.
func (s *OrderService) DeleteOrder(id string) error {
	if err := s.orderRepo.Delete(id); err != nil {
		return err
	}
	s.publishEvent("order.deleted", map[string]interface{}{"order_id": id})
	return nil
}

// publishEvent sends an order event to the queue, best-effort. Event loss is
// logged and never fails the triggering operation.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
