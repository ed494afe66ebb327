package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusPending is the status every new order starts in.
const OrderStatusPending = "pending"

// OrderItem is a line of an order. UnitPrice is a snapshot taken at checkout
// and never re-read from the product.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"index;not null"`
	ProductID uint            `json:"product_id" gorm:"index;not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Product   *Product        `json:"product,omitempty"`
}

// Order represents a customer order.
type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	UserID        uint            `json:"user_id" gorm:"index;not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	ItemCount     int             `json:"item_count" gorm:"not null"`
	RecipientName string          `json:"recipient_name" gorm:"type:varchar(150);not null"`
	Address       string          `json:"address" gorm:"type:text;not null"`
	Phone         string          `json:"phone" gorm:"type:varchar(30);not null"`
	Status        string          `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"items,omitempty"`
	User          *User           `json:"customer,omitempty"`
}

// ShippingDetails are the recipient fields of an order.
type ShippingDetails struct {
	RecipientName string
	Address       string
	Phone         string
}
