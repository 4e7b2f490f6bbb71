package loaders

import (
	"context"
	"net/http"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/booksaloon/backend/internal/domain/entities"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// BookingKey identifies one salon's bookings, optionally on a single date
type BookingKey struct {
	SalonID string
	Date    string
}

// BookingReader loads bookings for many salons in one call
type BookingReader interface {
	ListBySalons(ctx context.Context, salonIDs []string, date string) ([]entities.Booking, error)
}

// Loaders contains the per-request dataloaders
type Loaders struct {
	BookingLoader *dataloader.Loader[BookingKey, []entities.Booking]
}

// NewLoaders creates a fresh set of loaders; build one per request so
// results are never cached across callers
func NewLoaders(bookings BookingReader) *Loaders {
	return &Loaders{
		BookingLoader: dataloader.NewBatchedLoader(bookingBatch(bookings)),
	}
}

// bookingBatch issues one query per distinct date in the batch
func bookingBatch(repo BookingReader) dataloader.BatchFunc[BookingKey, []entities.Booking] {
	return func(ctx context.Context, keys []BookingKey) []*dataloader.Result[[]entities.Booking] {
		idsByDate := make(map[string][]string)
		seen := make(map[BookingKey]bool, len(keys))
		for _, key := range keys {
			if seen[key] {
				continue
			}
			seen[key] = true
			idsByDate[key.Date] = append(idsByDate[key.Date], key.SalonID)
		}

		found := make(map[BookingKey][]entities.Booking, len(keys))
		failed := make(map[string]error)
		for date, ids := range idsByDate {
			bookings, err := repo.ListBySalons(ctx, ids, date)
			if err != nil {
				failed[date] = err
				continue
			}
			for _, b := range bookings {
				key := BookingKey{SalonID: b.SalonID, Date: date}
				found[key] = append(found[key], b)
			}
		}

		results := make([]*dataloader.Result[[]entities.Booking], len(keys))
		for i, key := range keys {
			if err, ok := failed[key.Date]; ok {
				results[i] = &dataloader.Result[[]entities.Booking]{Error: err}
				continue
			}
			bookings := found[key]
			if bookings == nil {
				bookings = []entities.Booking{}
			}
			results[i] = &dataloader.Result[[]entities.Booking]{Data: bookings}
		}
		return results
	}
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches a fresh set of loaders to every request
func Middleware(bookings BookingReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(bookings))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
