package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

const productsTable = "products"

var productColumns = []interface{}{
	"id", "name", "category", "description", "img", "price",
	"rating", "total_reviews", "total_sales", "created_at", "updated_at",
}

// ProductAdapter implements the ProductRepository interface
type ProductAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.ProductRepository = (*ProductAdapter)(nil)

// NewProductAdapter creates a new product adapter
func NewProductAdapter(client *postgres.Client) *ProductAdapter {
	return &ProductAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new product
func (a *ProductAdapter) Create(ctx context.Context, product *entities.Product) error {
	record := productRecord(product)
	record["id"] = product.ID
	record["created_at"] = product.CreatedAt

	query, args, err := a.db.Insert(productsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictErrorWithCause(fmt.Sprintf("product with id %s already exists", product.ID), err)
		}
		return apperrors.NewInternalError("failed to create product", err)
	}
	return nil
}

// GetByID retrieves a product by ID
func (a *ProductAdapter) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	query, args, err := a.db.Select(productColumns...).
		From(productsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	product, err := scanProduct(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get product", err)
	}
	return product, nil
}

// Update updates a product
func (a *ProductAdapter) Update(ctx context.Context, product *entities.Product) error {
	query, args, err := a.db.Update(productsTable).
		Set(productRecord(product)).
		Where(goqu.Ex{"id": product.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update product", err)
	}
	return requireRow(result, fmt.Sprintf("product with id %s not found", product.ID))
}

// Delete deletes a product
func (a *ProductAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(productsTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete product", err)
	}
	return requireRow(result, fmt.Sprintf("product with id %s not found", id))
}

// List retrieves products, ordered by name then id. Category matches exactly.
func (a *ProductAdapter) List(ctx context.Context, filter repositories.ProductFilter) ([]entities.Product, error) {
	ds := a.db.Select(productColumns...).From(productsTable)
	if filter.Category != "" {
		ds = ds.Where(goqu.Ex{"category": filter.Category})
	}
	ds = ds.Order(goqu.I("name").Asc(), goqu.I("id").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list products", err)
	}
	defer rows.Close()

	products := []entities.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan product", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate products", err)
	}
	return products, nil
}

func productRecord(product *entities.Product) goqu.Record {
	return goqu.Record{
		"name":          product.Name,
		"category":      product.Category,
		"description":   nullString(product.Description),
		"img":           nullString(product.ImageURL),
		"price":         product.Price,
		"rating":        product.Rating,
		"total_reviews": product.TotalReviews,
		"total_sales":   product.TotalSales,
		"updated_at":    product.UpdatedAt,
	}
}

func scanProduct(row rowScanner) (*entities.Product, error) {
	product := &entities.Product{}
	var description, img sql.NullString

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&description,
		&img,
		&product.Price,
		&product.Rating,
		&product.TotalReviews,
		&product.TotalSales,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.Description = description.String
	product.ImageURL = img.String
	return product, nil
}
