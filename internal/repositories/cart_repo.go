package repositories

import (
	"context"

	"floryn/internal/models"
)

// CartRepository defines the interface for cart data access. Every write
// combines the line id with the owner id in one predicate.
type CartRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.CartItemView, error)
	AddQuantity(ctx context.Context, userID, productID uint, quantity int) (*models.CartLine, error)
	SetQuantity(ctx context.Context, userID, lineID uint, quantity int) error
	Remove(ctx context.Context, userID, lineID uint) error
}
