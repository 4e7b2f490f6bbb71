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
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

var bookingRowColumns = []string{
	"id", "user_id", "salon_id", "service", "price", "date", "time", "status",
	"service_duration", "created_at", "updated_at",
}

func TestBookingAdapter_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	booking := &entities.Booking{
		ID:        "booking-1",
		UserID:    "user-1",
		SalonID:   "salon-1",
		Service:   "Haircut",
		Price:     300,
		Date:      "2024-01-01",
		Time:      "10:00",
		Status:    entities.BookingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("inserts the booking", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookings"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, adapter.Create(ctx, booking))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("taken slot is a conflict", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookings"`)).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_active_slot_idx"})

		err := adapter.Create(ctx, booking)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		assert.Contains(t, err.Error(), "2024-01-01 10:00")
	})

	t.Run("foreign key failures are internal", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookings"`)).
			WillReturnError(&pq.Error{Code: "23503"})

		err := adapter.Create(ctx, booking)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})
}

func TestBookingAdapter_ListBySalon(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("restricts to a date", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		rows := sqlmock.NewRows(bookingRowColumns).
			AddRow("b1", "user-1", "salon-1", "Haircut", 300.0, "2024-01-01", "10:00", "pending", 1.0, now, now).
			AddRow("b2", "user-2", "salon-1", nil, 0.0, "2024-01-01", "12:00", "cancelled", 0.0, now, now)

		mock.ExpectQuery(regexp.QuoteMeta(
			`WHERE (("date" = '2024-01-01') AND ("salon_id" = 'salon-1')) ORDER BY "date" ASC, "time" ASC`,
		)).WillReturnRows(rows)

		bookings, err := adapter.ListBySalon(ctx, "salon-1", "2024-01-01")
		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, entities.BookingStatusPending, bookings[0].Status)
		assert.Empty(t, bookings[1].Service)
		assert.False(t, bookings[1].Occupies())
	})

	t.Run("all dates", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE ("salon_id" = 'salon-1')`)).
			WillReturnRows(sqlmock.NewRows(bookingRowColumns))

		bookings, err := adapter.ListBySalon(ctx, "salon-1", "")
		require.NoError(t, err)
		assert.NotNil(t, bookings)
		assert.Empty(t, bookings)
	})
}

func TestBookingAdapter_ListBySalons(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("single IN query", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		mock.ExpectQuery(regexp.QuoteMeta(
			`WHERE (("date" = '2024-01-01') AND ("salon_id" IN ('salon-1', 'salon-2')))`,
		)).WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow("b1", "user-1", "salon-1", "Haircut", 300.0, "2024-01-01", "10:00", "pending", 1.0, now, now).
			AddRow("b2", "user-2", "salon-2", "Facial", 900.0, "2024-01-01", "11:00", "confirmed", 1.5, now, now))

		bookings, err := adapter.ListBySalons(ctx, []string{"salon-1", "salon-2"}, "2024-01-01")
		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, "salon-2", bookings[1].SalonID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no ids skips the query", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		bookings, err := adapter.ListBySalons(ctx, nil, "")
		require.NoError(t, err)
		assert.Empty(t, bookings)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingAdapter_ListByUser(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := database.NewBookingAdapter(client)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ("user_id" = 'user-1')`)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow("b1", "user-1", "salon-3", "Facial", 900.0, "2024-02-01", "15:00", "completed", 1.5, now, now))

	bookings, err := adapter.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "salon-3", bookings[0].SalonID)
	assert.Equal(t, 1.5, bookings[0].ServiceDuration)
}

func TestBookingAdapter_GetByID(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := database.NewBookingAdapter(client)

	mock.ExpectQuery(`FROM "bookings"`).WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	_, err := adapter.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestBookingAdapter_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("updates one row", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bookings" SET "status"='confirmed'`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, adapter.UpdateStatus(ctx, "b1", entities.BookingStatusConfirmed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown booking is not found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		mock.ExpectExec(`UPDATE "bookings"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.UpdateStatus(ctx, "missing", entities.BookingStatusCancelled)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("reviving into a taken slot is a conflict", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := database.NewBookingAdapter(client)

		mock.ExpectExec(`UPDATE "bookings"`).WillReturnError(&pq.Error{Code: "23505"})

		err := adapter.UpdateStatus(ctx, "b1", entities.BookingStatusPending)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})
}
