package repositories

import (
	"context"

	"github.com/booksaloon/backend/internal/domain/entities"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error
	GetByID(ctx context.Context, id string) (*entities.Product, error)
	Update(ctx context.Context, product *entities.Product) error
	Delete(ctx context.Context, id string) error

	// List retrieves products; an empty Category matches all
	List(ctx context.Context, filter ProductFilter) ([]entities.Product, error)
}

// ProductFilter defines filters for listing products
type ProductFilter struct {
	Category string
	Limit    int
	Offset   int
}
