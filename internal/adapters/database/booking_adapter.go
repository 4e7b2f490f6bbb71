package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

const bookingsTable = "bookings"

var bookingColumns = []interface{}{
	"id", "user_id", "salon_id", "service", "price", "date", "time", "status",
	"service_duration", "created_at", "updated_at",
}

// BookingAdapter implements the BookingRepository interface. The partial
// unique index on (salon_id, date, time) rejects double bookings.
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.BookingRepository = (*BookingAdapter)(nil)

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) *BookingAdapter {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a booking. A live booking for the same slot yields a
// CONFLICT error.
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	record := goqu.Record{
		"id":               booking.ID,
		"user_id":          booking.UserID,
		"salon_id":         booking.SalonID,
		"service":          nullString(booking.Service),
		"price":            booking.Price,
		"date":             booking.Date,
		"time":             booking.Time,
		"status":           string(booking.Status),
		"service_duration": booking.ServiceDuration,
		"created_at":       booking.CreatedAt,
		"updated_at":       booking.UpdatedAt,
	}

	query, args, err := a.db.Insert(bookingsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictErrorWithCause(
				fmt.Sprintf("slot %s %s is already booked", booking.Date, booking.Time), err)
		}
		return apperrors.NewInternalError("failed to create booking", err)
	}
	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From(bookingsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}
	return booking, nil
}

// ListBySalon retrieves a salon's bookings. An empty date means all dates.
func (a *BookingAdapter) ListBySalon(ctx context.Context, salonID string, date string) ([]entities.Booking, error) {
	where := goqu.Ex{"salon_id": salonID}
	if date != "" {
		where["date"] = date
	}
	return a.list(ctx, where)
}

// ListBySalons retrieves bookings for a set of salons with a single IN query.
func (a *BookingAdapter) ListBySalons(ctx context.Context, salonIDs []string, date string) ([]entities.Booking, error) {
	if len(salonIDs) == 0 {
		return []entities.Booking{}, nil
	}
	where := goqu.Ex{"salon_id": salonIDs}
	if date != "" {
		where["date"] = date
	}
	return a.list(ctx, where)
}

// ListByUser retrieves every booking made by a user
func (a *BookingAdapter) ListByUser(ctx context.Context, userID string) ([]entities.Booking, error) {
	return a.list(ctx, goqu.Ex{"user_id": userID})
}

// UpdateStatus changes the status of a booking. Reviving a cancelled
// booking whose slot was taken since yields a CONFLICT error.
func (a *BookingAdapter) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) error {
	query, args, err := a.db.Update(bookingsTable).
		Set(goqu.Record{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictErrorWithCause("slot is already booked", err)
		}
		return apperrors.NewInternalError("failed to update booking status", err)
	}
	return requireRow(result, fmt.Sprintf("booking with id %s not found", id))
}

func (a *BookingAdapter) list(ctx context.Context, where goqu.Ex) ([]entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From(bookingsTable).
		Where(where).
		Order(goqu.I("date").Asc(), goqu.I("time").Asc(), goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	bookings := []entities.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate bookings", err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	booking := &entities.Booking{}
	var service sql.NullString
	var status string

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.SalonID,
		&service,
		&booking.Price,
		&booking.Date,
		&booking.Time,
		&status,
		&booking.ServiceDuration,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Service = service.String
	booking.Status = entities.BookingStatus(status)
	return booking, nil
}
