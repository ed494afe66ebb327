package handlers

import (
	"github.com/gofiber/fiber/v2"

	"floryn/internal/middleware"
	"floryn/internal/services"
)

// CartHandler handles HTTP requests for the signed-in user's cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes, all behind authRequired.
func (h *CartHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	cartRoutes := router.Group("/cart", authRequired)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddToCart)
	cartRoutes.Put("/:id", h.HandleUpdateCartItem)
	cartRoutes.Delete("/:id", h.HandleRemoveCartItem)
}

// HandleGetCart lists the caller's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	items, err := h.service.List(c.UserContext(), identity.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// AddToCartRequest is the body of an add-to-cart call.
type AddToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"`
}

// HandleAddToCart adds a product, merging with an existing line.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	var req AddToCartRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	line, err := h.service.Add(c.UserContext(), identity.ID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product added to cart",
		"item":    line,
	})
}

// UpdateCartItemRequest is the body of a quantity change.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateCartItem sets the quantity of one of the caller's lines.
func (h *CartHandler) HandleUpdateCartItem(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.service.SetQuantity(c.UserContext(), identity.ID, id, req.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart updated successfully"})
}

// HandleRemoveCartItem deletes one of the caller's lines.
func (h *CartHandler) HandleRemoveCartItem(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.Remove(c.UserContext(), identity.ID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product removed from cart"})
}
