package repositories

import (
	"context"

	"github.com/booksaloon/backend/internal/domain/entities"
)

// BookingRepository defines the interface for booking data operations.
// Implementations must reject a second non-cancelled booking for the same
// salon, date and time with a CONFLICT error.
type BookingRepository interface {
	// Create creates a new booking
	Create(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*entities.Booking, error)

	// ListBySalon retrieves bookings for a salon, optionally restricted to a date
	ListBySalon(ctx context.Context, salonID string, date string) ([]entities.Booking, error)

	// ListBySalons retrieves bookings for several salons in one query
	ListBySalons(ctx context.Context, salonIDs []string, date string) ([]entities.Booking, error)

	// ListByUser retrieves bookings made by a user
	ListByUser(ctx context.Context, userID string) ([]entities.Booking, error)

	// UpdateStatus changes the status of a booking
	UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) error
}

// InteractionRepository exposes user-salon interaction history
type InteractionRepository interface {
	// List retrieves every known interaction
	List(ctx context.Context) ([]entities.Interaction, error)
}
