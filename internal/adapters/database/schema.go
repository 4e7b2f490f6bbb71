package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the tables, indexes and views if they do not exist
func Migrate(ctx context.Context, client *postgres.Client) error {
	if _, err := client.DB().ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
