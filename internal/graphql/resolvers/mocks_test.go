package resolvers_test

import (
	"context"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
)

type MockSalonService struct {
	mock.Mock
}

func (m *MockSalonService) GetByID(ctx context.Context, id string) (*entities.Salon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Salon), args.Error(1)
}

func (m *MockSalonService) ListRanked(ctx context.Context, prefs services.RankPreferences) ([]entities.SalonResult, error) {
	args := m.Called(ctx, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.SalonResult), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string, opts services.SearchOptions) ([]entities.SalonResult, error) {
	args := m.Called(ctx, query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.SalonResult), args.Error(1)
}

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Recommend(ctx context.Context, req services.RecommendationRequest) ([]entities.Recommendation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Recommendation), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, category string) ([]entities.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Product), args.Error(1)
}

func (m *MockProductService) Recommended(ctx context.Context, limit int) ([]entities.ProductRecommendation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ProductRecommendation), args.Error(1)
}

// bookingReader serves fixed bookings and records every batch it receives
type bookingReader struct {
	mu       sync.Mutex
	batches  [][]string
	bookings []entities.Booking
}

func (r *bookingReader) ListBySalons(_ context.Context, ids []string, date string) ([]entities.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	r.batches = append(r.batches, sorted)

	var out []entities.Booking
	for _, b := range r.bookings {
		if date != "" && b.Date != date {
			continue
		}
		for _, id := range ids {
			if b.SalonID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}
