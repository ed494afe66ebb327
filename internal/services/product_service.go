package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"floryn/internal/apperror"
	"floryn/internal/logger"
	"floryn/internal/models"
	"floryn/internal/repositories"
)

// ImageRemover deletes stored product images.
type ImageRemover interface {
	Remove(ref string) error
}

// ProductInput carries every editable product field. Price and Stock are
// pointers so a missing value can be told apart from zero.
type ProductInput struct {
	Name        string
	Category    string
	Description string
	Image       string
	Price       *decimal.Decimal
	Stock       *int
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" ||
		strings.TrimSpace(in.Description) == "" || in.Price == nil || in.Stock == nil {
		return apperror.New(apperror.KindValidation, "name, category, description, price and stock are required")
	}
	if in.Price.IsNegative() || *in.Stock < 0 {
		return apperror.New(apperror.KindValidation, "price and stock must not be negative")
	}
	return nil
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Category = strings.TrimSpace(in.Category)
	p.Description = strings.TrimSpace(in.Description)
	p.Image = strings.TrimSpace(in.Image)
	p.Price = in.Price.Round(2)
	p.Stock = *in.Stock
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	images ImageRemover
}

// NewProductService creates a new ProductService. images may be nil when no
// files are kept on disk.
func NewProductService(repo repositories.ProductRepository, images ImageRemover) *ProductService {
	return &ProductService{
		repo:   repo,
		images: images,
	}
}

// List retrieves the catalog, optionally narrowed by category and name.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence("failed to list products", err)
	}
	return products, nil
}

// Get retrieves a single product with its reviews.
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "product not found", "failed to load product")
	}
	return product, nil
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{}
	in.apply(product)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperror.Persistence("failed to create product", err)
	}
	return product, nil
}

// Update replaces every field of a product. A replaced image file is removed.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "product not found", "failed to load product")
	}
	oldImage := existing.Image

	updated := &models.Product{ID: id, CreatedAt: existing.CreatedAt}
	in.apply(updated)
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, storeError(err, "product not found", "failed to update product")
	}

	if oldImage != "" && oldImage != updated.Image {
		s.removeImage(ctx, oldImage)
	}
	return updated, nil
}

// Delete removes a product and then, best effort, its image. Products that
// appear in orders cannot be deleted.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "product not found", "failed to load product")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrReferenced) {
			return apperror.Wrap(apperror.KindValidation, "product is part of existing orders and cannot be deleted", err)
		}
		return storeError(err, "product not found", "failed to delete product")
	}

	s.removeImage(ctx, existing.Image)
	return nil
}

func (s *ProductService) removeImage(ctx context.Context, ref string) {
	if s.images == nil || ref == "" {
		return
	}
	if err := s.images.Remove(ref); err != nil {
		logger.FromCtx(ctx).Warn("failed to remove product image", zap.String("image", ref), zap.Error(err))
	}
}

// AddReview records a rating between 1 and 5 for a product.
func (s *ProductService) AddReview(ctx context.Context, productID, userID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.New(apperror.KindValidation, "rating must be between 1 and 5")
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.repo.AddReview(ctx, review); err != nil {
		return nil, storeError(err, "product not found", "failed to save review")
	}
	return review, nil
}
