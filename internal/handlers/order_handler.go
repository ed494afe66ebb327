package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"floryn/internal/middleware"
	"floryn/internal/models"
	"floryn/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the order routes. Buyers check out and read their
// own orders; everything else is admin-only.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired, adminOnly fiber.Handler) {
	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Get("/my-orders", h.HandleGetMyOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", adminOnly, h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id", adminOnly, h.HandleUpdateOrder)
	orderRoutes.Put("/:id/status", adminOnly, h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", adminOnly, h.HandleDeleteOrder)
}

// ShippingInfo carries the recipient as the storefront sends it.
type ShippingInfo struct {
	RecipientName string `json:"namaPenerima"`
	Address       string `json:"alamat"`
	Phone         string `json:"noHp"`
}

// CheckoutItemRequest is one submitted order line.
type CheckoutItemRequest struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutRequest is the body of POST /orders.
type CheckoutRequest struct {
	ShippingInfo ShippingInfo          `json:"shippingInfo"`
	OrderItems   []CheckoutItemRequest `json:"orderItems"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	Total        decimal.Decimal       `json:"total"`
}

func (r CheckoutRequest) input() services.CheckoutInput {
	items := make([]services.CheckoutItem, 0, len(r.OrderItems))
	for _, item := range r.OrderItems {
		items = append(items, services.CheckoutItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return services.CheckoutInput{
		Shipping: models.ShippingDetails{
			RecipientName: r.ShippingInfo.RecipientName,
			Address:       r.ShippingInfo.Address,
			Phone:         r.ShippingInfo.Phone,
		},
		Items:    items,
		Subtotal: r.Subtotal,
		Total:    r.Total,
	}
}

// HandleCreateOrder checks out the caller's order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	var req CheckoutRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.service.Checkout(c.UserContext(), identity.ID, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"orderId": order.ID,
		"order":   order,
	})
}

// HandleGetMyOrders lists the caller's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	orders, err := h.service.ListMine(c.UserContext(), identity.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrders lists every order.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID returns one order to its owner or an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	order, err := h.service.Get(c.UserContext(), identity, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// UpdateOrderRequest is the body of a recipient change.
type UpdateOrderRequest struct {
	RecipientName string `json:"recipient_name" validate:"required"`
	Address       string `json:"address" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
}

// HandleUpdateOrder rewrites the recipient of an order.
func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	err = h.service.UpdateShipping(c.UserContext(), id, models.ShippingDetails{
		RecipientName: req.RecipientName,
		Address:       req.Address,
		Phone:         req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order details updated successfully"})
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	status, err := h.service.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"status":  status,
	})
}

// HandleDeleteOrder removes an order and its items.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted successfully"})
}
