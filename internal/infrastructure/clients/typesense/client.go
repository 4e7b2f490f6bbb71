package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/booksaloon/backend/internal/infrastructure/observability"
	"github.com/booksaloon/backend/pkg/config"
	"github.com/booksaloon/backend/pkg/retry"
)

// Client represents a Typesense client bound to the salon collection
type Client struct {
	client     *typesense.Client
	collection string
}

// NewClient creates a Typesense client and waits until the server is healthy
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	c := &Client{client: client, collection: cfg.Collection}
	if err := retry.Do(ctx, retry.DefaultConfig(), "typesense", c.Ping); err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense: %w", err)
	}

	observability.LoggerFromContext(ctx).Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return c, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Ping reports an error unless the server is healthy
func (c *Client) Ping(ctx context.Context) error {
	healthy, err := c.client.Health(ctx, 2*time.Second)
	if err != nil {
		return err
	}
	if !healthy {
		return fmt.Errorf("typesense reports unhealthy")
	}
	return nil
}

// Collection returns the salon collection name
func (c *Client) Collection() string {
	return c.collection
}

// InitSchema ensures the salon collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	logger := observability.LoggerFromContext(ctx)
	for _, col := range collections {
		if col.Name == c.collection {
			logger.Debug().Str("collection", c.collection).Msg("typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, SalonSchema(c.collection)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	logger.Info().Str("collection", c.collection).Msg("created typesense collection")
	return nil
}

// DropCollection deletes the salon collection and every document in it
func (c *Client) DropCollection(ctx context.Context) error {
	if _, err := c.client.Collection(c.collection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", c.collection, err)
	}
	return nil
}

// SalonSchema is the suggestion index schema. Only the fields needed to
// render a suggestion are indexed; ranking happens in the service.
func SalonSchema(name string) *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "address", Type: "string"},
			{Name: "services", Type: "string[]", Optional: pointer.True()},
			{Name: "rating", Type: "float"},
			{Name: "total_bookings", Type: "int32"},
		},
		DefaultSortingField: pointer.String("total_bookings"),
	}
}
