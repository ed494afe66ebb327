package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as JSON numbers, matching what the storefront client sends.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a bouquet in the catalog.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(150);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Category    string          `json:"category" gorm:"type:varchar(100);index"`
	Description string          `json:"description" gorm:"type:text"`
	Image       string          `json:"image" gorm:"type:varchar(255)"`
	CreatedAt   time.Time       `json:"created_at"`

	// Filled by catalog reads that aggregate reviews.
	AvgRating *float64 `json:"avg_rating" gorm:"->;-:migration"`
	Reviews   []Review `json:"reviews,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Query    string
}

// Review is a buyer's rating of a product.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
