package database_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booksaloon/backend/internal/adapters/database"
	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

var productRowColumns = []string{
	"id", "name", "category", "description", "img", "price",
	"rating", "total_reviews", "total_sales", "created_at", "updated_at",
}

func TestProductAdapter_Create(t *testing.T) {
	ctx := context.Background()
	product := &entities.Product{ID: "prod-1", Name: "Argan Hair Oil", Category: "Oil", Price: 850}

	t.Run("inserts the product", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewProductAdapter(client)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "products"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, adapter.Create(ctx, product))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewProductAdapter(client)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "products"`)).
			WillReturnError(&pq.Error{Code: "23505"})

		err := adapter.Create(ctx, product)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})
}

func TestProductAdapter_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("decodes the row", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewProductAdapter(client)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM "products" WHERE ("id" = 'prod-1')`)).
			WillReturnRows(sqlmock.NewRows(productRowColumns).AddRow(
				"prod-1", "Argan Hair Oil", "Oil", nil, "https://img.example/oil.jpg", 850.0,
				4.8, 120, 300, now, now,
			))

		product, err := adapter.GetByID(ctx, "prod-1")
		require.NoError(t, err)
		assert.Equal(t, "Argan Hair Oil", product.Name)
		assert.Empty(t, product.Description)
		assert.Equal(t, "https://img.example/oil.jpg", product.ImageURL)
		assert.Equal(t, 300, product.TotalSales)
	})

	t.Run("missing product is not found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewProductAdapter(client)

		mock.ExpectQuery(`FROM "products"`).WillReturnRows(sqlmock.NewRows(productRowColumns))

		_, err := adapter.GetByID(ctx, "nope")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestProductAdapter_UpdateDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("update of a missing product is not found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewProductAdapter(client)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Update(ctx, &entities.Product{ID: "nope", Name: "x", Category: "Oil"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("delete removes one row", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewProductAdapter(client)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products" WHERE ("id" = 'prod-1')`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, adapter.Delete(ctx, "prod-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductAdapter_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("filters by exact category", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewProductAdapter(client)

		mock.ExpectQuery(regexp.QuoteMeta(
			`FROM "products" WHERE ("category" = 'Styling') ORDER BY "name" ASC, "id" ASC`,
		)).WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow("prod-3", "Styling Gel", "Styling", nil, nil, 450.0, 4.5, 10, 40, now, now).
			AddRow("prod-5", "Hair Wax", "Styling", nil, nil, 600.0, 4.6, 8, 25, now, now))

		products, err := adapter.List(ctx, repositories.ProductFilter{Category: "Styling"})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "prod-5", products[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no category lists everything", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewProductAdapter(client)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id", "name", "category", "description", "img", "price", "rating", "total_reviews", "total_sales", "created_at", "updated_at" FROM "products" ORDER BY`)).
			WillReturnRows(sqlmock.NewRows(productRowColumns))

		products, err := adapter.List(ctx, repositories.ProductFilter{})
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})
}
