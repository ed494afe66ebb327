package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"floryn/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// PlaceOrder writes the order header, then its items, then clears every cart
// line of the owner. Any failure rolls the whole sequence back, so no header
// without items and no cleared cart without an order is ever visible.
func (r *GORMOrderRepository) PlaceOrder(ctx context.Context, order *models.Order, opts PlaceOrderOptions) error {
	items := order.Items
	if len(items) == 0 {
		return errors.New("order has no items")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.RepriceFromCatalog {
			if err := repriceItems(tx, order, items); err != nil {
				return err
			}
		}

		order.Items = nil
		order.ItemCount = len(items)
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i := range items {
			items[i].ID = 0
			items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return fmt.Errorf("failed to insert order items: %w: %v", ErrProductMissing, err)
			}
			return fmt.Errorf("failed to insert order items: %w", err)
		}

		if err := tx.Where("user_id = ?", order.UserID).Delete(&models.CartLine{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart of user %d: %w", order.UserID, err)
		}
		return nil
	})

	order.Items = items
	if err != nil {
		order.ID = 0
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = 0
		}
		return err
	}
	return nil
}

// repriceItems freezes the current catalog price into every item and
// recomputes the order total from them.
func repriceItems(tx *gorm.DB, order *models.Order, items []models.OrderItem) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	var products []models.Product
	if err := tx.Select("id", "price").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return fmt.Errorf("failed to load product prices: %w", err)
	}
	prices := make(map[uint]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	total := decimal.Zero
	for i := range items {
		price, ok := prices[items[i].ProductID]
		if !ok {
			return fmt.Errorf("product with ID %d: %w", items[i].ProductID, ErrProductMissing)
		}
		items[i].UnitPrice = price
		total = total.Add(price.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}
	order.Total = total
	return nil
}

func (r *GORMOrderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		Preload("User")
}

// ListByUser returns the user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.withDetails(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of user %d: %w", userID, err)
	}
	return orders, nil
}

// ListAll returns every order with its customer and items, newest first.
func (r *GORMOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.withDetails(ctx).Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its customer and items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// UpdateStatus sets the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateShipping rewrites the recipient fields of an order.
func (r *GORMOrderRepository) UpdateShipping(ctx context.Context, id uint, details models.ShippingDetails) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"recipient_name": details.RecipientName,
			"address":        details.Address,
			"phone":          details.Phone,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update shipping of order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an order's items and then the order itself in one
// transaction. The header delete decides the outcome: when it matches nothing
// the transaction rolls back with ErrNotFound.
func (r *GORMOrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of order %d: %w", id, err)
		}

		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Count returns the number of orders.
func (r *GORMOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// Recent returns the latest orders with the customer's name.
func (r *GORMOrderRepository) Recent(ctx context.Context, limit int) ([]models.RecentOrder, error) {
	recent := make([]models.RecentOrder, 0, limit)
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.id, users.name AS customer, orders.created_at, orders.total, orders.status").
		Joins("JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC").Order("orders.id DESC").
		Limit(limit).
		Scan(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return recent, nil
}
