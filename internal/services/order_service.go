package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"floryn/internal/apperror"
	"floryn/internal/logger"
	"floryn/internal/metrics"
	"floryn/internal/models"
	"floryn/internal/repositories"
	"floryn/pkg/rabbitmq"
)

// Routing keys of the events published after order changes commit.
const (
	EventOrderCreated       = rabbitmq.RoutingOrderCreated
	EventOrderStatusUpdated = rabbitmq.RoutingOrderStatusUpdated
)

// acceptedStatuses lists every status an admin may set, English and Indonesian.
var acceptedStatuses = map[string]struct{}{
	"pending":    {},
	"processing": {},
	"shipped":    {},
	"completed":  {},
	"cancelled":  {},
	"diproses":   {},
	"dikirim":    {},
	"selesai":    {},
	"dibatalkan": {},
}

// NormalizeStatus lowercases status and reports whether it is accepted.
func NormalizeStatus(status string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	_, ok := acceptedStatuses[normalized]
	return normalized, ok
}

// EventPublisher delivers order events to a broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEvent is the body of every published order event.
type OrderEvent struct {
	OrderID    uint            `json:"order_id"`
	UserID     uint            `json:"user_id"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// CheckoutItem is one line of a checkout request.
type CheckoutItem struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

// CheckoutInput is the checkout request of a signed-in buyer.
type CheckoutInput struct {
	Shipping models.ShippingDetails
	Items    []CheckoutItem
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

func (in CheckoutInput) validate() error {
	if strings.TrimSpace(in.Shipping.RecipientName) == "" ||
		strings.TrimSpace(in.Shipping.Address) == "" ||
		strings.TrimSpace(in.Shipping.Phone) == "" {
		return apperror.New(apperror.KindIncompleteOrder, "recipient name, address and phone are required")
	}
	if len(in.Items) == 0 {
		return apperror.New(apperror.KindIncompleteOrder, "order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.ProductID == 0 || item.Quantity < 1 {
			return apperror.New(apperror.KindIncompleteOrder, "every item needs a product and a quantity of at least 1")
		}
		if item.Price.IsNegative() {
			return apperror.New(apperror.KindIncompleteOrder, "item price must not be negative")
		}
	}
	return nil
}

// OrderService runs checkout and the order administration workflow.
type OrderService struct {
	repo      repositories.OrderRepository
	publisher EventPublisher
	// repriceFromCatalog ignores submitted prices and totals in favour of
	// the current product prices.
	repriceFromCatalog bool
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case events are skipped.
func NewOrderService(repo repositories.OrderRepository, publisher EventPublisher, repriceFromCatalog bool) *OrderService {
	return &OrderService{
		repo:               repo,
		publisher:          publisher,
		repriceFromCatalog: repriceFromCatalog,
	}
}

// Checkout turns the submitted items into an order and empties the caller's
// cart, all or nothing.
func (s *OrderService) Checkout(ctx context.Context, userID uint, in CheckoutInput) (*models.Order, error) {
	log := logger.FromCtx(ctx)

	if err := in.validate(); err != nil {
		metrics.RecordCheckoutFailure("incomplete")
		return nil, err
	}

	order := &models.Order{
		UserID:        userID,
		Total:         in.Total.Round(2),
		RecipientName: strings.TrimSpace(in.Shipping.RecipientName),
		Address:       strings.TrimSpace(in.Shipping.Address),
		Phone:         strings.TrimSpace(in.Shipping.Phone),
		Status:        models.OrderStatusPending,
		Items:         make([]models.OrderItem, 0, len(in.Items)),
	}
	for _, item := range in.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price.Round(2),
		})
	}

	opts := repositories.PlaceOrderOptions{RepriceFromCatalog: s.repriceFromCatalog}
	if err := s.repo.PlaceOrder(ctx, order, opts); err != nil {
		if errors.Is(err, repositories.ErrProductMissing) {
			metrics.RecordCheckoutFailure("unknown_product")
			if opts.RepriceFromCatalog {
				return nil, apperror.Wrap(apperror.KindNotFound, "product not found", err)
			}
		} else {
			metrics.RecordCheckoutFailure("store")
		}
		log.Error("checkout rolled back", zap.Uint("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("failed to create order", err)
	}

	metrics.RecordOrderCreated()
	log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("item_count", order.ItemCount),
	)
	s.publish(ctx, EventOrderCreated, order)
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, routingKey string, order *models.Order) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		ItemCount:  order.ItemCount,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to encode order event", zap.Error(err))
		return
	}

	err = s.publisher.Publish(routingKey, body)
	metrics.RecordEventPublished(routingKey, err == nil)
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order event",
			zap.String("routing_key", routingKey),
			zap.Uint("order_id", order.ID),
			zap.Error(err),
		)
	}
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Persistence("failed to load orders", err)
	}
	return orders, nil
}

// ListAll returns every order for administrators.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Persistence("failed to load orders", err)
	}
	return orders, nil
}

// Get returns an order to its owner or to an administrator.
func (s *OrderService) Get(ctx context.Context, caller Identity, id uint) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "order not found", "failed to load order")
	}
	if !caller.IsAdmin() && order.UserID != caller.ID {
		return nil, apperror.New(apperror.KindForbidden, "you do not have access to this order")
	}
	return order, nil
}

// UpdateStatus moves an order to any accepted status and returns the stored
// form of it.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (string, error) {
	normalized, ok := NormalizeStatus(status)
	if !ok {
		return "", apperror.New(apperror.KindInvalidStatus, "invalid order status")
	}

	if err := s.repo.UpdateStatus(ctx, id, normalized); err != nil {
		return "", storeError(err, "order not found", "failed to update order status")
	}
	metrics.RecordStatusUpdate(normalized)

	if s.publisher != nil {
		if order, err := s.repo.GetByID(ctx, id); err == nil {
			s.publish(ctx, EventOrderStatusUpdated, order)
		}
	}
	return normalized, nil
}

// UpdateShipping rewrites the recipient fields of an order.
func (s *OrderService) UpdateShipping(ctx context.Context, id uint, details models.ShippingDetails) error {
	details = models.ShippingDetails{
		RecipientName: strings.TrimSpace(details.RecipientName),
		Address:       strings.TrimSpace(details.Address),
		Phone:         strings.TrimSpace(details.Phone),
	}
	if details.RecipientName == "" || details.Address == "" || details.Phone == "" {
		return apperror.New(apperror.KindValidation, "recipient name, address and phone are required")
	}

	if err := s.repo.UpdateShipping(ctx, id, details); err != nil {
		return storeError(err, "order not found", "failed to update order")
	}
	return nil
}

// Delete removes an order and its items.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "order not found", "failed to delete order")
	}
	logger.FromCtx(ctx).Info("order deleted", zap.Uint("order_id", id))
	return nil
}
