package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats summarizes the store for the admin dashboard.
type DashboardStats struct {
	TotalProducts int64         `json:"total_products"`
	TotalOrders   int64         `json:"total_orders"`
	TotalUsers    int64         `json:"total_users"`
	RecentOrders  []RecentOrder `json:"recent_orders"`
}

// RecentOrder is a compact order row for the dashboard.
type RecentOrder struct {
	ID        uint            `json:"id"`
	Customer  string          `json:"customer"`
	CreatedAt time.Time       `json:"created_at"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
}
