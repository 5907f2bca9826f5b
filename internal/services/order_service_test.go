package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"winestore/internal/models"
	"winestore/internal/repositories"
	"winestore/internal/services"
	"winestore/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll() ([]models.Order, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByUserID(userID uint) ([]models.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIdempotencyKey(key string) (*models.Order, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

// stubOrderCache is a map-backed fallback cache for listing tests.
type stubOrderCache struct {
	entries map[string]*repositories.CachedOrders
}

func newStubOrderCache() *stubOrderCache {
	return &stubOrderCache{entries: make(map[string]*repositories.CachedOrders)}
}

func (c *stubOrderCache) Get(_ context.Context, key string) (*repositories.CachedOrders, error) {
	return c.entries[key], nil
}

func (c *stubOrderCache) Put(_ context.Context, key string, orders []models.Order) error {
	c.entries[key] = &repositories.CachedOrders{Orders: orders, CachedAt: time.Now()}
	return nil
}

func validCustomerInfo() models.CustomerInfo {
	return models.CustomerInfo{
		Name:          "Nguyễn Văn A",
		Email:         "a@ruouvan.com",
		Phone:         "0901234567",
		Address:       "12 Lý Thường Kiệt, Hà Nội",
		PaymentMethod: "cod",
	}
}

// newOrderFixture builds an order service over a populated cart. The returned
// cart key already holds two units of product 3 and one of product 10, so the
// cart subtotal is 260,000.
func newOrderFixture(t *testing.T) (*services.OrderService, *MockOrderRepository, *MockEventPublisher, *services.CartService) {
	t.Helper()

	cartSvc, _ := newCartFixture(t)
	ctx := context.Background()
	for _, id := range []uint{3, 3, 10} {
		_, err := cartSvc.AddItem(ctx, "user:42", id)
		assert.NoError(t, err)
	}

	mockRepo := new(MockOrderRepository)
	mockPublisher := new(MockEventPublisher)
	svc := services.NewOrderService(mockRepo, cartSvc, nil, mockPublisher, services.OrderServiceConfig{
		ShippingFee: 30000,
	})
	return svc, mockRepo, mockPublisher, cartSvc
}

func TestOrderService_Checkout(t *testing.T) {
	svc, mockRepo, mockPublisher, cartSvc := newOrderFixture(t)
	ctx := context.Background()

	mockRepo.On("GetByIdempotencyKey", "key-1").Return(nil, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	mockPublisher.On("Publish", "order.created", mock.Anything).Return(nil).Once()

	order, err := svc.Checkout(ctx, 42, "user:42", validCustomerInfo(), "key-1")
	assert.NoError(t, err)
	assert.NotNil(t, order)

	// Cart subtotal 260,000 plus the flat 30,000 shipping fee
	assert.Equal(t, money.Amount(290000), order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, uint(42), order.UserID)
	assert.Contains(t, order.ID, "ORD-")
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "key-1", order.IdempotencyKey)

	// Success empties the cart
	cart, err := cartSvc.GetCart(ctx, "user:42")
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.ItemCount)

	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	svc, mockRepo, _, _ := newOrderFixture(t)

	_, err := svc.Checkout(context.Background(), 42, "user:empty", validCustomerInfo(), "")
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestOrderService_Checkout_MissingCustomerInfo(t *testing.T) {
	svc, mockRepo, _, cartSvc := newOrderFixture(t)
	ctx := context.Background()

	info := validCustomerInfo()
	info.Phone = ""
	_, err := svc.Checkout(ctx, 42, "user:42", info, "")
	assert.ErrorIs(t, err, services.ErrMissingCustomerInfo)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)

	// The cart is untouched
	cart, err := cartSvc.GetCart(ctx, "user:42")
	assert.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount)
}

func TestOrderService_Checkout_IdempotentReplay(t *testing.T) {
	svc, mockRepo, _, _ := newOrderFixture(t)

	existing := &models.Order{ID: "ORD-first", UserID: 42, Status: models.StatusPending, IdempotencyKey: "key-1"}
	mockRepo.On("GetByIdempotencyKey", "key-1").Return(existing, nil).Once()

	order, err := svc.Checkout(context.Background(), 42, "user:42", validCustomerInfo(), "key-1")
	assert.NoError(t, err)
	assert.Equal(t, "ORD-first", order.ID)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_Checkout_CreateFailureKeepsCart(t *testing.T) {
	svc, mockRepo, _, cartSvc := newOrderFixture(t)
	ctx := context.Background()

	mockRepo.On("GetByIdempotencyKey", "key-1").Return(nil, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(fmt.Errorf("database error")).Once()

	_, err := svc.Checkout(ctx, 42, "user:42", validCustomerInfo(), "key-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create order")

	cart, err := cartSvc.GetCart(ctx, "user:42")
	assert.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_Checkout_SnapshotsItems(t *testing.T) {
	// Editing or deleting a product after checkout must not change the
	// order's recorded lines.
	productRepo := repositories.NewMockProductRepository()
	product := models.Product{ID: 3, Name: "Set Rượu Dâu Gia Đình", Type: "Rượu Dâu", Price: 55000}
	assert.NoError(t, productRepo.Create(&product))

	cartSvc := services.NewCartService(repositories.NewMemoryCartStore(), productRepo)
	ctx := context.Background()
	_, err := cartSvc.AddItem(ctx, "user:42", 3)
	assert.NoError(t, err)

	var created *models.Order
	mockRepo := new(MockOrderRepository)
	mockRepo.On("GetByIdempotencyKey", "key-1").Return(nil, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.Order)
	}).Return(nil).Once()

	svc := services.NewOrderService(mockRepo, cartSvc, nil, nil, services.OrderServiceConfig{ShippingFee: 30000})
	_, err = svc.Checkout(ctx, 42, "user:42", validCustomerInfo(), "key-1")
	assert.NoError(t, err)

	// Reprice and then delete the product
	product.Price = 99000
	assert.NoError(t, productRepo.Update(&product))
	assert.NoError(t, productRepo.Delete(3))

	assert.Equal(t, money.Amount(55000), created.Items[0].Price)
	assert.Equal(t, "Set Rượu Dâu Gia Đình", created.Items[0].Name)
	assert.Equal(t, money.Amount(85000), created.Total)
}

func TestOrderService_UpdateOrderStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusShipping, true},
		{models.StatusShipping, models.StatusDelivered, true},
		{models.StatusPending, models.StatusShipping, false},
		{models.StatusPending, models.StatusDelivered, false},
		{models.StatusConfirmed, models.StatusDelivered, false},
		{models.StatusConfirmed, models.StatusCancelled, false},
		{models.StatusDelivered, models.StatusPending, false},
		{models.StatusDelivered, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusPending, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_to_%s", tc.from, tc.to), func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			svc := services.NewOrderService(mockRepo, nil, nil, nil, services.OrderServiceConfig{})

			order := &models.Order{ID: "ORD-1", UserID: 7, Status: tc.from}
			mockRepo.On("GetByID", "ORD-1").Return(order, nil).Once()
			if tc.allowed {
				mockRepo.On("UpdateStatus", "ORD-1", tc.to).Return(nil).Once()
			}

			err := svc.UpdateOrderStatus("ORD-1", string(tc.to), 1, models.RoleAdmin)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, services.ErrInvalidTransition)
				mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateOrderStatus_RejectsUnknownValue(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := services.NewOrderService(mockRepo, nil, nil, nil, services.OrderServiceConfig{})

	err := svc.UpdateOrderStatus("ORD-1", "teleported", 1, models.RoleAdmin)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status")
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateOrderStatus_CustomerRules(t *testing.T) {
	// Customers may cancel their own pending order and nothing else.
	order := &models.Order{ID: "ORD-1", UserID: 7, Status: models.StatusPending}

	mockRepo := new(MockOrderRepository)
	svc := services.NewOrderService(mockRepo, nil, nil, nil, services.OrderServiceConfig{})

	mockRepo.On("GetByID", "ORD-1").Return(order, nil).Times(3)
	mockRepo.On("UpdateStatus", "ORD-1", models.StatusCancelled).Return(nil).Once()

	// Own order, cancel: allowed
	err := svc.UpdateOrderStatus("ORD-1", string(models.StatusCancelled), 7, models.RoleUser)
	assert.NoError(t, err)

	// Own order, any other target: forbidden
	err = svc.UpdateOrderStatus("ORD-1", string(models.StatusConfirmed), 7, models.RoleUser)
	assert.ErrorIs(t, err, services.ErrForbidden)

	// Someone else's order: forbidden
	err = svc.UpdateOrderStatus("ORD-1", string(models.StatusCancelled), 8, models.RoleUser)
	assert.ErrorIs(t, err, services.ErrForbidden)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_GetOrder_Ownership(t *testing.T) {
	order := &models.Order{ID: "ORD-1", UserID: 7, Status: models.StatusPending}

	mockRepo := new(MockOrderRepository)
	svc := services.NewOrderService(mockRepo, nil, nil, nil, services.OrderServiceConfig{})
	mockRepo.On("GetByID", "ORD-1").Return(order, nil).Times(3)

	got, err := svc.GetOrder("ORD-1", 7, models.RoleUser)
	assert.NoError(t, err)
	assert.Equal(t, order, got)

	_, err = svc.GetOrder("ORD-1", 8, models.RoleUser)
	assert.ErrorIs(t, err, services.ErrForbidden)

	got, err = svc.GetOrder("ORD-1", 1, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, order, got)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_ListOrders_CacheFallback(t *testing.T) {
	ctx := context.Background()
	cache := newStubOrderCache()
	orders := []models.Order{{ID: "ORD-1", UserID: 7, Status: models.StatusDelivered, Total: 290000}}

	// A successful read refreshes the cache
	mockRepo := new(MockOrderRepository)
	mockRepo.On("GetAll").Return(orders, nil).Once()
	svc := services.NewOrderService(mockRepo, nil, cache, nil, services.OrderServiceConfig{})

	got, err := svc.ListOrders(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, orders, got)
	assert.NotNil(t, cache.entries["all"])

	// A failed read is served from the snapshot
	mockRepo.On("GetAll").Return(nil, fmt.Errorf("connection refused")).Once()
	got, err = svc.ListOrders(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, orders, got)
	mockRepo.AssertExpectations(t)

	// Without a snapshot the failure propagates
	emptyCacheSvc := services.NewOrderService(mockRepo, nil, newStubOrderCache(), nil, services.OrderServiceConfig{})
	mockRepo.On("GetByUserID", uint(7)).Return(nil, fmt.Errorf("connection refused")).Once()
	userID := uint(7)
	_, err = emptyCacheSvc.ListOrders(ctx, &userID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list orders")
	mockRepo.AssertExpectations(t)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockPublisher := new(MockEventPublisher)
	svc := services.NewOrderService(mockRepo, nil, nil, mockPublisher, services.OrderServiceConfig{})

	mockRepo.On("Delete", "ORD-1").Return(nil).Once()
	mockPublisher.On("Publish", "order.deleted", mock.Anything).Return(nil).Once()
	assert.NoError(t, svc.DeleteOrder("ORD-1"))

	mockRepo.On("Delete", "ORD-404").Return(fmt.Errorf("order with ID ORD-404 not found")).Once()
	err := svc.DeleteOrder("ORD-404")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}
