package resolvers

import (
	"context"

	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/graphql/executor"
	"github.com/booksaloon/backend/internal/graphql/loaders"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

// SalonService is the catalog side of salons
type SalonService interface {
	GetByID(ctx context.Context, id string) (*entities.Salon, error)
	ListRanked(ctx context.Context, prefs services.RankPreferences) ([]entities.SalonResult, error)
}

// SearchService runs the search pipeline
type SearchService interface {
	Search(ctx context.Context, query string, opts services.SearchOptions) ([]entities.SalonResult, error)
}

// RecommendationService produces salon recommendations
type RecommendationService interface {
	Recommend(ctx context.Context, req services.RecommendationRequest) ([]entities.Recommendation, error)
}

// ProductService reads the product catalog
type ProductService interface {
	GetByID(ctx context.Context, id string) (*entities.Product, error)
	List(ctx context.Context, category string) ([]entities.Product, error)
	Recommended(ctx context.Context, limit int) ([]entities.ProductRecommendation, error)
}

// Resolver binds the GraphQL read API to the application services
type Resolver struct {
	salons          SalonService
	search          SearchService
	recommendations RecommendationService
	products        ProductService
}

// NewResolver creates a new resolver
func NewResolver(salons SalonService, search SearchService, recommendations RecommendationService, products ProductService) *Resolver {
	return &Resolver{
		salons:          salons,
		search:          search,
		recommendations: recommendations,
		products:        products,
	}
}

// Resolvers returns the field resolvers keyed by "Type.field"
func (r *Resolver) Resolvers() executor.Resolvers {
	return executor.Resolvers{
		"Query.searchSalons":            r.searchSalons,
		"Query.salons":                  r.listSalons,
		"Query.salon":                   r.salon,
		"Query.recommendations":         r.recommend,
		"Query.products":                r.listProducts,
		"Query.product":                 r.product,
		"Query.recommendedProducts":     r.recommendedProducts,
		"Salon.bookings":                r.salonBookings,
		"Recommendation.salon":          recommendationSalon,
		"ProductRecommendation.product": recommendedProduct,
	}
}

func (r *Resolver) searchSalons(ctx context.Context, _ any, args map[string]any) (any, error) {
	limit, err := executor.IntArg(args, "limit", 0)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must be a non-negative integer")
	}
	maxBudget, err := budgetArg(args)
	if err != nil {
		return nil, err
	}

	return r.search.Search(ctx, executor.StringArg(args, "query"), services.SearchOptions{
		Limit:     limit,
		SortBy:    executor.StringArg(args, "sortBy"),
		SortOrder: executor.StringArg(args, "sortOrder"),
		MaxBudget: maxBudget,
	})
}

func (r *Resolver) listSalons(ctx context.Context, _ any, args map[string]any) (any, error) {
	maxBudget, err := budgetArg(args)
	if err != nil {
		return nil, err
	}

	return r.salons.ListRanked(ctx, services.RankPreferences{
		MaxBudget:         maxBudget,
		SortBy:            executor.StringArg(args, "sortBy"),
		SortOrder:         executor.StringArg(args, "sortOrder"),
		PreferredLocation: executor.StringArg(args, "location"),
	})
}

func (r *Resolver) salon(ctx context.Context, _ any, args map[string]any) (any, error) {
	salon, err := r.salons.GetByID(ctx, executor.StringArg(args, "id"))
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return salon, nil
}

func (r *Resolver) recommend(ctx context.Context, _ any, args map[string]any) (any, error) {
	limit, err := executor.IntArg(args, "limit", 0)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must be a non-negative integer")
	}

	return r.recommendations.Recommend(ctx, services.RecommendationRequest{
		UserID:            executor.StringArg(args, "userId"),
		Limit:             limit,
		PreferredLocation: executor.StringArg(args, "location"),
		PreferredCategory: executor.StringArg(args, "category"),
	})
}

func (r *Resolver) listProducts(ctx context.Context, _ any, args map[string]any) (any, error) {
	return r.products.List(ctx, executor.StringArg(args, "category"))
}

func (r *Resolver) product(ctx context.Context, _ any, args map[string]any) (any, error) {
	product, err := r.products.GetByID(ctx, executor.StringArg(args, "id"))
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Resolver) recommendedProducts(ctx context.Context, _ any, args map[string]any) (any, error) {
	limit, err := executor.IntArg(args, "limit", 0)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must be a non-negative integer")
	}
	return r.products.Recommended(ctx, limit)
}

// salonBookings goes through the request's booking loader so a list of
// salons costs one query per date.
func (r *Resolver) salonBookings(ctx context.Context, parent any, args map[string]any) (any, error) {
	id, ok := salonID(parent)
	if !ok {
		return nil, apperrors.NewInternalError("bookings resolved on a non-salon value", nil)
	}
	ldrs := loaders.For(ctx)
	if ldrs == nil {
		return nil, apperrors.NewInternalError("booking loader is not configured", nil)
	}
	return ldrs.BookingLoader.Load(ctx, loaders.BookingKey{
		SalonID: id,
		Date:    executor.StringArg(args, "date"),
	})()
}

func recommendationSalon(_ context.Context, parent any, _ map[string]any) (any, error) {
	switch rec := parent.(type) {
	case entities.Recommendation:
		return &rec.Salon, nil
	case *entities.Recommendation:
		return &rec.Salon, nil
	}
	return nil, apperrors.NewInternalError("salon resolved on a non-recommendation value", nil)
}

func recommendedProduct(_ context.Context, parent any, _ map[string]any) (any, error) {
	switch rec := parent.(type) {
	case entities.ProductRecommendation:
		return &rec.Product, nil
	case *entities.ProductRecommendation:
		return &rec.Product, nil
	}
	return nil, apperrors.NewInternalError("product resolved on a non-recommendation value", nil)
}

func salonID(parent any) (string, bool) {
	switch s := parent.(type) {
	case entities.SalonResult:
		return s.ID, true
	case *entities.SalonResult:
		return s.ID, true
	case entities.Salon:
		return s.ID, true
	case *entities.Salon:
		return s.ID, true
	}
	return "", false
}

func budgetArg(args map[string]any) (float64, error) {
	maxBudget, err := executor.FloatArg(args, "maxBudget", 0)
	if err != nil {
		return 0, err
	}
	if maxBudget < 0 {
		return 0, apperrors.NewValidationError("maxBudget must be a non-negative number")
	}
	return maxBudget, nil
}
