package repositories

import (
	"context"

	"floryn/internal/models"
)

// PlaceOrderOptions tunes how PlaceOrder prices the submitted items.
type PlaceOrderOptions struct {
	// RepriceFromCatalog replaces submitted unit prices with the current
	// product prices and recomputes the total inside the transaction.
	RepriceFromCatalog bool
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// PlaceOrder inserts the order and its items and empties the owner's cart
	// as one transaction.
	PlaceOrder(ctx context.Context, order *models.Order, opts PlaceOrderOptions) error
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	UpdateShipping(ctx context.Context, id uint, details models.ShippingDetails) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.RecentOrder, error)
}
