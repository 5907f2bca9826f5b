package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"winestore/internal/middleware"
	"winestore/internal/models"
	"winestore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service     *services.OrderService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, authService *services.AuthService) *OrderHandler {
	return &OrderHandler{
		service:     service,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the order routes. All of them require an
// authenticated caller; deletion requires the admin role on top.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.AuthRequired(h.authService))
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", middleware.AdminRequired(), h.HandleDeleteOrder)
}

// HandleGetOrders lists orders. Admins see everything (optionally filtered
// by user_id); customers see only their own.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(uint)
	role, _ := c.Locals("role").(string)

	var filter *uint
	if role == models.RoleAdmin {
		if raw := c.Query("user_id"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": "Invalid user_id filter",
				})
			}
			id := uint(parsed)
			filter = &id
		}
	} else {
		filter = &actorID
	}

	orders, err := h.service.ListOrders(c.Context(), filter)
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(uint)
	role, _ := c.Locals("role").(string)
	orderID := c.Params("id")

	order, err := h.service.GetOrder(orderID, actorID, role)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		if errors.Is(err, services.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not your order",
			})
		}
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"order": order})
}

// CreateOrderRequest represents the checkout submission.
type CreateOrderRequest struct {
	CustomerInfo   models.CustomerInfo `json:"customer_info"`
	IdempotencyKey string              `json:"idempotency_key"`
}

// HandleCreateOrder submits the caller's cart as a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(uint)

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	// Missing required shipping fields block submission with the list of
	// reasons, before anything touches storage.
	if err := h.validate.Struct(req.CustomerInfo); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	cartKey := "user:" + strconv.FormatUint(uint64(actorID), 10)
	order, err := h.service.Checkout(c.Context(), actorID, cartKey, req.CustomerInfo, req.IdempotencyKey)
	if err != nil {
		log.Printf("Error creating order for user %d: %v", actorID, err)
		if errors.Is(err, services.ErrEmptyCart) || errors.Is(err, services.ErrMissingCustomerInfo) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Order submission rejected",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create order",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

// UpdateStatusRequest represents the request body for a status update.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus applies a status transition. Admins drive the
// lifecycle; customers may only cancel their own pending order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(uint)
	role, _ := c.Locals("role").(string)
	orderID := c.Params("id")

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required",
		})
	}

	if err := h.service.UpdateOrderStatus(orderID, req.Status, actorID, role); err != nil {
		log.Printf("Error updating status of order %s: %v", orderID, err)
		switch {
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not allowed to update this order",
			})
		case errors.Is(err, services.ErrInvalidTransition), strings.Contains(err.Error(), "invalid order status"):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid status update",
				"error":   err.Error(),
			})
		case strings.Contains(err.Error(), "not found"):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not update order status",
				"error":   err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
	})
}

// HandleDeleteOrder removes an order and its line items. Admin only.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	if err := h.service.DeleteOrder(orderID); err != nil {
		log.Printf("Error deleting order %s: %v", orderID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete order",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Order deleted successfully",
	})
}
