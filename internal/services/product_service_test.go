package services_test

import (
	"context"
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

func priceOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func stockOf(n int) *int {
	return &n
}

func validProductInput() services.ProductInput {
	return services.ProductInput{
		Name:        "Red Rose Bouquet",
		Category:    "bouquet",
		Description: "Twelve red roses",
		Image:       "/uploads/rose.jpg",
		Price:       priceOf("150000"),
		Stock:       stockOf(10),
	}
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	filter := models.ProductFilter{Category: "bouquet", Query: "rose"}
	expectedProducts := []models.Product{
		{ID: 1, Name: "Red Rose Bouquet", Price: decimal.NewFromInt(150000), Stock: 10},
		{ID: 2, Name: "White Rose Box", Price: decimal.NewFromInt(175000), Stock: 4},
	}
	mockRepo.On("List", ctx, filter).Return(expectedProducts, nil).Once()

	products, err := service.List(ctx, filter)
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Get(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProduct := &models.Product{ID: 1, Name: "Red Rose Bouquet"}
	mockRepo.On("GetByID", ctx, uint(1)).Return(expectedProduct, nil).Once()
	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	mockRepo.On("GetByID", ctx, uint(100)).Return(nil, errors.New("connection refused")).Once()

	product, err := service.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	_, err = service.Get(ctx, 99)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = service.Get(ctx, 100)
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	in := validProductInput()
	in.Price = priceOf("150000.555")
	product, err := service.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Red Rose Bouquet", product.Name)
	assert.Equal(t, "150000.56", product.Price.StringFixed(2))
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateValidation(t *testing.T) {
	ctx := context.Background()

	missingPrice := validProductInput()
	missingPrice.Price = nil
	missingName := validProductInput()
	missingName.Name = "  "
	negativeStock := validProductInput()
	negativeStock.Stock = stockOf(-1)
	negativePrice := validProductInput()
	negativePrice.Price = priceOf("-1")

	for name, in := range map[string]services.ProductInput{
		"missing price":  missingPrice,
		"missing name":   missingName,
		"negative stock": negativeStock,
		"negative price": negativePrice,
	} {
		t.Run(name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			_, err := services.NewProductService(mockRepo, nil).Create(ctx, in)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	zeroStock := validProductInput()
	zeroStock.Stock = stockOf(0)
	mockRepo := new(MockProductRepository)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	_, err := services.NewProductService(mockRepo, nil).Create(ctx, zeroStock)
	assert.NoError(t, err)
}

func TestProductService_UpdateReplacesImage(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	images := new(MockImageRemover)
	service := services.NewProductService(mockRepo, images)

	mockRepo.On("GetByID", ctx, uint(4)).Return(&models.Product{ID: 4, Image: "/uploads/old.jpg"}, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == 4 && p.Image == "/uploads/rose.jpg"
	})).Return(nil).Once()
	images.On("Remove", "/uploads/old.jpg").Return(errors.New("permission denied")).Once()

	product, err := service.Update(ctx, 4, validProductInput())
	require.NoError(t, err)
	assert.Equal(t, "/uploads/rose.jpg", product.Image)

	mockRepo.AssertExpectations(t)
	images.AssertExpectations(t)
}

func TestProductService_UpdateKeepsSameImage(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	images := new(MockImageRemover)
	service := services.NewProductService(mockRepo, images)

	mockRepo.On("GetByID", ctx, uint(4)).Return(&models.Product{ID: 4, Image: "/uploads/rose.jpg"}, nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	_, err := service.Update(ctx, 4, validProductInput())
	require.NoError(t, err)
	images.AssertNotCalled(t, "Remove", mock.Anything)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	images := new(MockImageRemover)
	service := services.NewProductService(mockRepo, images)

	mockRepo.On("GetByID", ctx, uint(1)).Return(&models.Product{ID: 1, Image: "/uploads/rose.jpg"}, nil).Once()
	mockRepo.On("Delete", ctx, uint(1)).Return(nil).Once()
	images.On("Remove", "/uploads/rose.jpg").Return(nil).Once()
	require.NoError(t, service.Delete(ctx, 1))

	mockRepo.On("GetByID", ctx, uint(2)).Return(&models.Product{ID: 2, Image: "/uploads/lily.jpg"}, nil).Once()
	mockRepo.On("Delete", ctx, uint(2)).Return(fmt.Errorf("product 2: %w", repositories.ErrReferenced)).Once()
	err := service.Delete(ctx, 2)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	mockRepo.On("GetByID", ctx, uint(3)).Return(nil, repositories.ErrNotFound).Once()
	err = service.Delete(ctx, 3)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	mockRepo.AssertExpectations(t)
	images.AssertExpectations(t)
	images.AssertNotCalled(t, "Remove", "/uploads/lily.jpg")
}

func TestProductService_AddReview(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	_, err := service.AddReview(ctx, 1, 2, 6, "")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	mockRepo.On("AddReview", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.ProductID == 1 && r.UserID == 2 && r.Rating == 5 && r.Comment == "cantik"
	})).Return(nil).Once()
	review, err := service.AddReview(ctx, 1, 2, 5, " cantik ")
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	mockRepo.On("AddReview", ctx, mock.AnythingOfType("*models.Review")).Return(repositories.ErrNotFound).Once()
	_, err = service.AddReview(ctx, 404, 2, 4, "")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	mockRepo.AssertExpectations(t)
}
