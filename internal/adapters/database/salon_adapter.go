package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

const salonsTable = "salons"

var salonColumns = []interface{}{
	"id", "owner_id", "name", "category", "address", "description", "img", "services",
	"rating", "starting_price", "total_reviews", "total_bookings", "available_slots",
	"is_fully_booked", "opening_hour", "closing_hour", "last_active", "created_at", "updated_at",
}

// SalonAdapter implements the SalonRepository interface
type SalonAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.SalonRepository = (*SalonAdapter)(nil)

// NewSalonAdapter creates a new salon adapter
func NewSalonAdapter(client *postgres.Client) *SalonAdapter {
	return &SalonAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new salon
func (a *SalonAdapter) Create(ctx context.Context, salon *entities.Salon) error {
	record, err := salonRecord(salon)
	if err != nil {
		return err
	}
	record["id"] = salon.ID
	record["created_at"] = salon.CreatedAt

	query, args, err := a.db.Insert(salonsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictErrorWithCause(fmt.Sprintf("salon with id %s already exists", salon.ID), err)
		}
		return apperrors.NewInternalError("failed to create salon", err)
	}
	return nil
}

// GetByID retrieves a salon by ID
func (a *SalonAdapter) GetByID(ctx context.Context, id string) (*entities.Salon, error) {
	query, args, err := a.db.Select(salonColumns...).
		From(salonsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	salon, err := scanSalon(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("salon with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get salon", err)
	}
	return salon, nil
}

// Update updates a salon
func (a *SalonAdapter) Update(ctx context.Context, salon *entities.Salon) error {
	record, err := salonRecord(salon)
	if err != nil {
		return err
	}

	query, args, err := a.db.Update(salonsTable).
		Set(record).
		Where(goqu.Ex{"id": salon.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update salon", err)
	}
	return requireRow(result, fmt.Sprintf("salon with id %s not found", salon.ID))
}

// Delete deletes a salon and, through the foreign key, its bookings
func (a *SalonAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(salonsTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete salon", err)
	}
	return requireRow(result, fmt.Sprintf("salon with id %s not found", id))
}

// List retrieves salons with filters, ordered by name then id
func (a *SalonAdapter) List(ctx context.Context, filter repositories.SalonFilter) ([]entities.Salon, error) {
	ds := a.db.Select(salonColumns...).From(salonsTable)

	if filter.Category != "" {
		ds = ds.Where(goqu.Ex{"category": filter.Category})
	}
	if filter.OwnerID != "" {
		ds = ds.Where(goqu.Ex{"owner_id": filter.OwnerID})
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
		return nil, apperrors.NewInternalError("failed to list salons", err)
	}
	defer rows.Close()

	salons := []entities.Salon{}
	for rows.Next() {
		salon, err := scanSalon(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan salon", err)
		}
		salons = append(salons, *salon)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate salons", err)
	}
	return salons, nil
}

// salonRecord holds every mutable column
func salonRecord(salon *entities.Salon) (goqu.Record, error) {
	services := salon.Services
	if services == nil {
		services = []entities.Service{}
	}
	servicesJSON, err := json.Marshal(services)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode salon services", err)
	}

	return goqu.Record{
		"owner_id":        nullString(salon.OwnerID),
		"name":            salon.Name,
		"category":        nullString(salon.Category),
		"address":         salon.Address,
		"description":     nullString(salon.Description),
		"img":             nullString(salon.ImageURL),
		"services":        string(servicesJSON),
		"rating":          salon.Rating,
		"starting_price":  salon.StartingPrice,
		"total_reviews":   salon.TotalReviews,
		"total_bookings":  salon.TotalBookings,
		"available_slots": nullInt(salon.AvailableSlots),
		"is_fully_booked": salon.IsFullyBooked,
		"opening_hour":    nullHour(salon.OpeningHour),
		"closing_hour":    nullHour(salon.ClosingHour),
		"last_active":     nullTime(salon.LastActive),
		"updated_at":      salon.UpdatedAt,
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSalon(row rowScanner) (*entities.Salon, error) {
	salon := &entities.Salon{}
	var (
		ownerID, category, description, img sql.NullString
		services                             []byte
		availableSlots                       sql.NullInt64
		openingHour, closingHour             sql.NullInt64
		lastActive                           sql.NullTime
	)

	err := row.Scan(
		&salon.ID,
		&ownerID,
		&salon.Name,
		&category,
		&salon.Address,
		&description,
		&img,
		&services,
		&salon.Rating,
		&salon.StartingPrice,
		&salon.TotalReviews,
		&salon.TotalBookings,
		&availableSlots,
		&salon.IsFullyBooked,
		&openingHour,
		&closingHour,
		&lastActive,
		&salon.CreatedAt,
		&salon.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	salon.OwnerID = ownerID.String
	salon.Category = category.String
	salon.Description = description.String
	salon.ImageURL = img.String
	salon.OpeningHour = int(openingHour.Int64)
	salon.ClosingHour = int(closingHour.Int64)
	if availableSlots.Valid {
		v := int(availableSlots.Int64)
		salon.AvailableSlots = &v
	}
	if lastActive.Valid {
		t := lastActive.Time
		salon.LastActive = &t
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &salon.Services); err != nil {
			return nil, fmt.Errorf("failed to decode services of salon %s: %w", salon.ID, err)
		}
	}
	// A NULL column or a stored JSON null both decode to a nil slice.
	if salon.Services == nil {
		salon.Services = []entities.Service{}
	}
	return salon, nil
}

func requireRow(result sql.Result, notFound string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(notFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullHour(h int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(h), Valid: h > 0}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
