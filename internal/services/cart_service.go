package services

import (
	"context"

	"floryn/internal/apperror"
	"floryn/internal/models"
	"floryn/internal/repositories"
)

var errQuantity = apperror.New(apperror.KindValidation, "quantity must be at least 1")

// CartService manages the caller's cart. Every write is scoped to the owner.
type CartService struct {
	repo repositories.CartRepository
}

// NewCartService creates a new CartService.
func NewCartService(repo repositories.CartRepository) *CartService {
	return &CartService{repo: repo}
}

// List returns the caller's cart with current product data.
func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartItemView, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Persistence("failed to load cart", err)
	}
	return items, nil
}

// Add puts quantity units of a product in the cart, merging with an existing line.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartLine, error) {
	if quantity < 1 {
		return nil, errQuantity
	}
	if productID == 0 {
		return nil, apperror.New(apperror.KindValidation, "product_id is required")
	}

	line, err := s.repo.AddQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, storeError(err, "product not found", "failed to add to cart")
	}
	return line, nil
}

// SetQuantity overwrites the quantity of one of the caller's lines.
func (s *CartService) SetQuantity(ctx context.Context, userID, lineID uint, quantity int) error {
	if quantity < 1 {
		return errQuantity
	}
	if err := s.repo.SetQuantity(ctx, userID, lineID, quantity); err != nil {
		return storeError(err, "cart item not found", "failed to update cart")
	}
	return nil
}

// Remove deletes one of the caller's lines.
func (s *CartService) Remove(ctx context.Context, userID, lineID uint) error {
	if err := s.repo.Remove(ctx, userID, lineID); err != nil {
		return storeError(err, "cart item not found", "failed to remove cart item")
	}
	return nil
}
