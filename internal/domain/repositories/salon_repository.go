package repositories

import (
	"context"

	"github.com/booksaloon/backend/internal/domain/entities"
)

// SalonRepository defines the interface for salon data operations
type SalonRepository interface {
	// Create creates a new salon
	Create(ctx context.Context, salon *entities.Salon) error

	// GetByID retrieves a salon by ID
	GetByID(ctx context.Context, id string) (*entities.Salon, error)

	// Update updates a salon
	Update(ctx context.Context, salon *entities.Salon) error

	// Delete deletes a salon
	Delete(ctx context.Context, id string) error

	// List retrieves salons with filters
	List(ctx context.Context, filter SalonFilter) ([]entities.Salon, error)
}

// SalonFilter defines filters for listing salons
type SalonFilter struct {
	Category string
	OwnerID  string
	Limit    int
	Offset   int
}

// SalonSuggestRepository serves typeahead suggestions from a search index
type SalonSuggestRepository interface {
	// Suggest returns salons whose name matches the prefix
	Suggest(ctx context.Context, prefix string, limit int) ([]SalonSuggestion, error)

	// Index adds or replaces a salon in the index
	Index(ctx context.Context, salon *entities.Salon) error

	// Delete removes a salon from the index
	Delete(ctx context.Context, id string) error
}

// SalonSuggestion is a lightweight suggestion entry
type SalonSuggestion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Address  string  `json:"address,omitempty"`
	Rating   float64 `json:"rating"`
}
