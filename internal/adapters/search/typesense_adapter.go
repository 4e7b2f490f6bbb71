package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	tsclient "github.com/booksaloon/backend/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter serves salon name suggestions from Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.SalonSuggestRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index upserts a salon document
func (a *TypesenseAdapter) Index(ctx context.Context, salon *entities.Salon) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Documents().Upsert(ctx, salonDocument(salon))
	if err != nil {
		return fmt.Errorf("failed to index salon: %w", err)
	}
	return nil
}

// Delete removes a salon from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete salon from index: %w", err)
	}
	return nil
}

// Suggest returns salons whose name, category or services start with prefix
func (a *TypesenseAdapter) Suggest(ctx context.Context, prefix string, limit int) ([]repositories.SalonSuggestion, error) {
	params := &api.SearchCollectionParams{
		Q:       pointer.String(prefix),
		QueryBy: pointer.String("name,category,services"),
		SortBy:  pointer.String("_text_match:desc,total_bookings:desc"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search salons: %w", err)
	}

	suggestions := []repositories.SalonSuggestion{}
	if result.Hits == nil {
		return suggestions, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if s, ok := suggestionFromDocument(*hit.Document); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions, nil
}

// suggestionFromDocument reads a search hit; documents without an id are skipped
func suggestionFromDocument(doc map[string]interface{}) (repositories.SalonSuggestion, bool) {
	id, _ := doc["id"].(string)
	if id == "" {
		return repositories.SalonSuggestion{}, false
	}
	s := repositories.SalonSuggestion{ID: id}
	s.Name, _ = doc["name"].(string)
	s.Category, _ = doc["category"].(string)
	s.Address, _ = doc["address"].(string)
	if val, ok := doc["rating"].(float64); ok {
		s.Rating = val
	}
	return s, true
}
