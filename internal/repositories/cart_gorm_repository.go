package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"floryn/internal/models"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// ListByUser returns the user's cart lines with live product data.
func (r *GORMCartRepository) ListByUser(ctx context.Context, userID uint) ([]models.CartItemView, error) {
	items := make([]models.CartItemView, 0)
	err := r.db.WithContext(ctx).
		Table("carts").
		Select("carts.id, carts.product_id, carts.quantity, products.name AS product_name, products.price, products.image, products.stock").
		Joins("JOIN products ON products.id = carts.product_id").
		Where("carts.user_id = ?", userID).
		Order("carts.id").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart of user %d: %w", userID, err)
	}
	return items, nil
}

// AddQuantity increments the user's line for productID, creating it when absent.
func (r *GORMCartRepository) AddQuantity(ctx context.Context, userID, productID uint, quantity int) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartLine{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return fmt.Errorf("failed to increment cart line: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			line = models.CartLine{UserID: userID, ProductID: productID, Quantity: quantity}
			if err := tx.Omit("User", "Product").Create(&line).Error; err != nil {
				if errors.Is(err, gorm.ErrForeignKeyViolated) {
					return fmt.Errorf("product with ID %d: %w", productID, ErrNotFound)
				}
				return fmt.Errorf("failed to create cart line: %w", err)
			}
			return nil
		}

		return tx.First(&line, "user_id = ? AND product_id = ?", userID, productID).Error
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// SetQuantity overwrites the quantity of a line owned by userID.
func (r *GORMCartRepository) SetQuantity(ctx context.Context, userID, lineID uint, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line %d: %w", lineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line %d of user %d: %w", lineID, userID, ErrNotFound)
	}
	return nil
}

// Remove deletes a line owned by userID.
func (r *GORMCartRepository) Remove(ctx context.Context, userID, lineID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", lineID, userID).Delete(&models.CartLine{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line %d: %w", lineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line %d of user %d: %w", lineID, userID, ErrNotFound)
	}
	return nil
}
