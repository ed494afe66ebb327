package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"floryn/internal/apperror"
	"floryn/internal/models"
	"floryn/internal/repositories"
	"floryn/internal/services"
)

func checkoutInput() services.CheckoutInput {
	return services.CheckoutInput{
		Shipping: models.ShippingDetails{RecipientName: "Sari", Address: "Jl. Kenanga 5", Phone: "0812"},
		Items: []services.CheckoutItem{
			{ProductID: 7, Quantity: 2, Price: decimal.NewFromInt(100000)},
			{ProductID: 9, Quantity: 1, Price: decimal.NewFromInt(50000)},
		},
		Subtotal: decimal.NewFromInt(250000),
		Total:    decimal.NewFromInt(250000),
	}
}

func placeOrderSucceeds(args mock.Arguments) {
	order := args.Get(1).(*models.Order)
	order.ID = 31
	order.ItemCount = len(order.Items)
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockOrderRepository)
	publisher := new(MockPublisher)
	service := services.NewOrderService(mockRepo, publisher, false)

	mockRepo.On("PlaceOrder", ctx, mock.MatchedBy(func(o *models.Order) bool {
		return o.UserID == 4 &&
			o.Status == models.OrderStatusPending &&
			o.Total.Equal(decimal.NewFromInt(250000)) &&
			len(o.Items) == 2 &&
			o.Items[0].UnitPrice.Equal(decimal.NewFromInt(100000))
	}), repositories.PlaceOrderOptions{}).Run(placeOrderSucceeds).Return(nil).Once()

	publisher.On("Publish", services.EventOrderCreated, mock.MatchedBy(func(body []byte) bool {
		var event services.OrderEvent
		return json.Unmarshal(body, &event) == nil && event.OrderID == 31 && event.Status == "pending"
	})).Return(nil).Once()

	order, err := service.Checkout(ctx, 4, checkoutInput())
	require.NoError(t, err)
	assert.EqualValues(t, 31, order.ID)
	assert.Equal(t, 2, order.ItemCount)

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOrderService_CheckoutPublishFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockOrderRepository)
	publisher := new(MockPublisher)
	service := services.NewOrderService(mockRepo, publisher, false)

	mockRepo.On("PlaceOrder", ctx, mock.AnythingOfType("*models.Order"), repositories.PlaceOrderOptions{}).
		Run(placeOrderSucceeds).Return(nil).Once()
	publisher.On("Publish", services.EventOrderCreated, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := service.Checkout(ctx, 4, checkoutInput())
	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestOrderService_CheckoutPreconditions(t *testing.T) {
	ctx := context.Background()

	noPhone := checkoutInput()
	noPhone.Shipping.Phone = " "
	noItems := checkoutInput()
	noItems.Items = nil
	zeroQty := checkoutInput()
	zeroQty.Items[1].Quantity = 0

	for name, in := range map[string]services.CheckoutInput{
		"missing phone": noPhone,
		"no items":      noItems,
		"zero quantity": zeroQty,
	} {
		t.Run(name, func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			_, err := services.NewOrderService(mockRepo, nil, false).Checkout(ctx, 4, in)
			assert.Equal(t, apperror.KindIncompleteOrder, apperror.KindOf(err))
			mockRepo.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_CheckoutRollback(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockOrderRepository)
	publisher := new(MockPublisher)
	service := services.NewOrderService(mockRepo, publisher, false)

	mockRepo.On("PlaceOrder", ctx, mock.AnythingOfType("*models.Order"), repositories.PlaceOrderOptions{}).
		Return(fmt.Errorf("failed to insert order items: %w", repositories.ErrProductMissing)).Once()

	_, err := service.Checkout(ctx, 4, checkoutInput())
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderService_CheckoutServerPricing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockOrderRepository)
	service := services.NewOrderService(mockRepo, nil, true)

	reprice := repositories.PlaceOrderOptions{RepriceFromCatalog: true}
	mockRepo.On("PlaceOrder", ctx, mock.AnythingOfType("*models.Order"), reprice).Run(placeOrderSucceeds).Return(nil).Once()
	mockRepo.On("PlaceOrder", ctx, mock.AnythingOfType("*models.Order"), reprice).
		Return(repositories.ErrProductMissing).Once()

	_, err := service.Checkout(ctx, 4, checkoutInput())
	require.NoError(t, err)

	_, err = service.Checkout(ctx, 4, checkoutInput())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	mockRepo.AssertExpectations(t)
}

func TestOrderService_GetOwnership(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockOrderRepository)
	service := services.NewOrderService(mockRepo, nil, false)

	mockRepo.On("GetByID", ctx, uint(31)).Return(&models.Order{ID: 31, UserID: 4}, nil)
	mockRepo.On("GetByID", ctx, uint(32)).Return(nil, repositories.ErrNotFound)

	owner := services.Identity{ID: 4, Role: models.RoleBuyer}
	stranger := services.Identity{ID: 5, Role: models.RoleBuyer}
	admin := services.Identity{ID: 1, Role: models.RoleAdmin}

	order, err := service.Get(ctx, owner, 31)
	require.NoError(t, err)
	assert.EqualValues(t, 31, order.ID)

	_, err = service.Get(ctx, stranger, 31)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = service.Get(ctx, admin, 31)
	assert.NoError(t, err)

	_, err = service.Get(ctx, admin, 32)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"SELESAI", "selesai", true},
		{" Shipped ", "shipped", true},
		{"dibatalkan", "dibatalkan", true},
		{"completed", "completed", true},
		{"teleported", "teleported", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := services.NormalizeStatus(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockOrderRepository)
	publisher := new(MockPublisher)
	service := services.NewOrderService(mockRepo, publisher, false)

	mockRepo.On("UpdateStatus", ctx, uint(31), "selesai").Return(nil).Once()
	mockRepo.On("GetByID", ctx, uint(31)).Return(&models.Order{ID: 31, Status: "selesai"}, nil).Once()
	publisher.On("Publish", services.EventOrderStatusUpdated, mock.Anything).Return(nil).Once()
	mockRepo.On("UpdateStatus", ctx, uint(99), "shipped").Return(repositories.ErrNotFound).Once()

	status, err := service.UpdateStatus(ctx, 31, "SELESAI")
	require.NoError(t, err)
	assert.Equal(t, "selesai", status)

	_, err = service.UpdateStatus(ctx, 31, "lost")
	assert.Equal(t, apperror.KindInvalidStatus, apperror.KindOf(err))

	_, err = service.UpdateStatus(ctx, 99, "shipped")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOrderService_UpdateShippingAndDelete(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockOrderRepository)
	service := services.NewOrderService(mockRepo, nil, false)

	details := models.ShippingDetails{RecipientName: "Ibu Sari", Address: "Jl. Dahlia 9", Phone: "0899"}
	mockRepo.On("UpdateShipping", ctx, uint(31), details).Return(nil).Once()
	mockRepo.On("Delete", ctx, uint(31)).Return(nil).Once()
	mockRepo.On("Delete", ctx, uint(32)).Return(repositories.ErrNotFound).Once()

	require.NoError(t, service.UpdateShipping(ctx, 31, models.ShippingDetails{RecipientName: " Ibu Sari ", Address: "Jl. Dahlia 9", Phone: "0899"}))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(service.UpdateShipping(ctx, 31, models.ShippingDetails{})))

	assert.NoError(t, service.Delete(ctx, 31))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(service.Delete(ctx, 32)))
	mockRepo.AssertExpectations(t)
}

func TestOrderService_Listings(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockOrderRepository)
	service := services.NewOrderService(mockRepo, nil, false)

	mine := []models.Order{{ID: 2, UserID: 4}, {ID: 1, UserID: 4}}
	mockRepo.On("ListByUser", ctx, uint(4)).Return(mine, nil).Once()
	mockRepo.On("ListAll", ctx).Return([]models.Order{}, errors.New("timeout")).Once()

	orders, err := service.ListMine(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, mine, orders)

	_, err = service.ListAll(ctx)
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
}
