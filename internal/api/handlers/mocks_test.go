package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
)

type MockSalonService struct {
	mock.Mock
}

func (m *MockSalonService) Create(ctx context.Context, salon *entities.Salon) error {
	args := m.Called(ctx, salon)
	return args.Error(0)
}

func (m *MockSalonService) GetByID(ctx context.Context, id string) (*entities.Salon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Salon), args.Error(1)
}

func (m *MockSalonService) Update(ctx context.Context, salon *entities.Salon) error {
	args := m.Called(ctx, salon)
	return args.Error(0)
}

func (m *MockSalonService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSalonService) ListRanked(ctx context.Context, prefs services.RankPreferences) ([]entities.SalonResult, error) {
	args := m.Called(ctx, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.SalonResult), args.Error(1)
}

func (m *MockSalonService) Suggest(ctx context.Context, prefix string, limit int) ([]repositories.SalonSuggestion, error) {
	args := m.Called(ctx, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.SalonSuggestion), args.Error(1)
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

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, salonID, date, t string) (*entities.AvailabilityResult, error) {
	args := m.Called(ctx, salonID, date, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AvailabilityResult), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req services.CreateBookingRequest) (*entities.AvailabilityResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AvailabilityResult), args.Error(1)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingService) GetSalonBookings(ctx context.Context, salonID string) ([]entities.Booking, error) {
	args := m.Called(ctx, salonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Booking), args.Error(1)
}

func (m *MockBookingService) GetUserBookings(ctx context.Context, userID string) ([]entities.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Booking), args.Error(1)
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

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, product *entities.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, product *entities.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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
