package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"floryn/internal/apperror"
	"floryn/internal/models"
	"floryn/internal/repositories"
)

// RecentOrdersShown is how many orders the dashboard lists.
const RecentOrdersShown = 5

// DashboardService aggregates store-wide figures for administrators.
type DashboardService struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	users    repositories.UserRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(products repositories.ProductRepository, orders repositories.OrderRepository, users repositories.UserRepository) *DashboardService {
	return &DashboardService{products: products, orders: orders, users: users}
}

// Stats runs the four dashboard queries concurrently. The first failure
// cancels the rest.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalProducts, err = s.products.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = s.orders.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.RecentOrders, err = s.orders.Recent(gctx, RecentOrdersShown)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperror.Persistence("failed to load dashboard stats", err)
	}
	return stats, nil
}
