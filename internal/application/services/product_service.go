package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

// ProductService handles the grooming product catalog
type ProductService struct {
	repo        repositories.ProductRepository
	recommender *HybridRecommender
}

// NewProductService creates a new product service
func NewProductService(repo repositories.ProductRepository, recommender *HybridRecommender) *ProductService {
	return &ProductService{
		repo:        repo,
		recommender: recommender,
	}
}

// Create validates and stores a new product
func (s *ProductService) Create(ctx context.Context, product *entities.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	return s.repo.Create(ctx, product)
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces a product's fields
func (s *ProductService) Update(ctx context.Context, product *entities.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	product.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, product)
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List returns products of a category, or all products when category is empty
func (s *ProductService) List(ctx context.Context, category string) ([]entities.Product, error) {
	return s.repo.List(ctx, repositories.ProductFilter{Category: strings.TrimSpace(category)})
}

// Recommended returns the most popular products across the catalog
func (s *ProductService) Recommended(ctx context.Context, limit int) ([]entities.ProductRecommendation, error) {
	products, err := s.repo.List(ctx, repositories.ProductFilter{})
	if err != nil {
		return nil, err
	}
	return s.recommender.PopularProducts(products, limit), nil
}

func validateProduct(product *entities.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return apperrors.NewValidationError("name is required")
	}
	if strings.TrimSpace(product.Category) == "" {
		return apperrors.NewValidationError("category is required")
	}
	if product.Price < 0 {
		return apperrors.NewValidationError("price must not be negative")
	}
	if product.Rating < 0 || product.Rating > maxRating {
		return apperrors.NewValidationError("rating must be between 0 and 5")
	}
	if product.TotalReviews < 0 || product.TotalSales < 0 {
		return apperrors.NewValidationError("counts must not be negative")
	}
	return nil
}
