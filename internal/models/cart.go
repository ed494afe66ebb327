package models

import "github.com/shopspring/decimal"

// CartLine is one product in a user's cart.
type CartLine struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	UserID    uint     `json:"user_id" gorm:"not null;uniqueIndex:idx_carts_user_product"`
	ProductID uint     `json:"product_id" gorm:"not null;uniqueIndex:idx_carts_user_product"`
	Quantity  int      `json:"quantity" gorm:"not null"`
	User      *User    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Product   *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (CartLine) TableName() string {
	return "carts"
}

// CartItemView is a cart line joined with the live product it points at.
type CartItemView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	Quantity    int             `json:"quantity"`
	ProductName string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
}
