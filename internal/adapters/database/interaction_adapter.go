package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

const interactionsView = "salon_interactions"

// InteractionAdapter reads user-salon signals from the salon_interactions
// view, which joins live booking counts with review ratings.
type InteractionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.InteractionRepository = (*InteractionAdapter)(nil)

// NewInteractionAdapter creates a new interaction adapter
func NewInteractionAdapter(client *postgres.Client) *InteractionAdapter {
	return &InteractionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// List retrieves every interaction ordered by user then salon
func (a *InteractionAdapter) List(ctx context.Context) ([]entities.Interaction, error) {
	query, args, err := a.db.Select("user_id", "salon_id", "rating", "booking_count").
		From(interactionsView).
		Order(goqu.I("user_id").Asc(), goqu.I("salon_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list interactions", err)
	}
	defer rows.Close()

	interactions := []entities.Interaction{}
	for rows.Next() {
		var in entities.Interaction
		if err := rows.Scan(&in.UserID, &in.SalonID, &in.Rating, &in.BookingCount); err != nil {
			return nil, apperrors.NewInternalError("failed to scan interaction", err)
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate interactions", err)
	}
	return interactions, nil
}
