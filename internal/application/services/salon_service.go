package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

const defaultSuggestLimit = 5

// SearchCacheInvalidator drops cached search results
type SearchCacheInvalidator interface {
	InvalidateSearchCaches(ctx context.Context) error
}

// SalonService handles business logic for salons
type SalonService struct {
	repo        repositories.SalonRepository
	suggestRepo repositories.SalonSuggestRepository
	ranking     *SearchRankingService
	invalidator SearchCacheInvalidator
}

// NewSalonService creates a new salon service. suggestRepo may be nil.
func NewSalonService(repo repositories.SalonRepository, suggestRepo repositories.SalonSuggestRepository, ranking *SearchRankingService) *SalonService {
	return &SalonService{
		repo:        repo,
		suggestRepo: suggestRepo,
		ranking:     ranking,
	}
}

// WithCacheInvalidator makes catalog changes drop cached search results
func (s *SalonService) WithCacheInvalidator(invalidator SearchCacheInvalidator) *SalonService {
	s.invalidator = invalidator
	return s
}

// Create creates a new salon and indexes it
func (s *SalonService) Create(ctx context.Context, salon *entities.Salon) error {
	if err := validateSalon(salon); err != nil {
		return err
	}
	if salon.ID == "" {
		salon.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	salon.CreatedAt = now
	salon.UpdatedAt = now

	if err := s.repo.Create(ctx, salon); err != nil {
		return err
	}
	s.index(ctx, salon)
	s.catalogChanged(ctx)
	return nil
}

// GetByID retrieves a salon by ID
func (s *SalonService) GetByID(ctx context.Context, id string) (*entities.Salon, error) {
	return s.repo.GetByID(ctx, id)
}

// Update updates a salon and updates the index
func (s *SalonService) Update(ctx context.Context, salon *entities.Salon) error {
	if err := validateSalon(salon); err != nil {
		return err
	}
	salon.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, salon); err != nil {
		return err
	}
	s.index(ctx, salon)
	s.catalogChanged(ctx)
	return nil
}

// Delete deletes a salon and removes it from the index
func (s *SalonService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.suggestRepo != nil {
		if err := s.suggestRepo.Delete(ctx, id); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("salon_id", id).Msg("failed to remove salon from index")
		}
	}
	s.catalogChanged(ctx)
	return nil
}

// ListRanked returns the whole catalog ordered by the feature ranker
func (s *SalonService) ListRanked(ctx context.Context, prefs RankPreferences) ([]entities.SalonResult, error) {
	salons, err := s.repo.List(ctx, repositories.SalonFilter{})
	if err != nil {
		return nil, err
	}
	return s.ranking.Rank(entities.NewSalonResults(salons), prefs), nil
}

// Suggest returns name suggestions for a prefix. Without a suggestion index
// the result is always empty.
func (s *SalonService) Suggest(ctx context.Context, prefix string, limit int) ([]repositories.SalonSuggestion, error) {
	prefix = strings.TrimSpace(prefix)
	if s.suggestRepo == nil || prefix == "" {
		return []repositories.SalonSuggestion{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	return s.suggestRepo.Suggest(ctx, prefix, limit)
}

func (s *SalonService) index(ctx context.Context, salon *entities.Salon) {
	if s.suggestRepo == nil {
		return
	}
	// Eventual consistency; the indexer command repairs drift
	if err := s.suggestRepo.Index(ctx, salon); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("salon_id", salon.ID).Msg("failed to index salon")
	}
}

func (s *SalonService) catalogChanged(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateSearchCaches(ctx); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to invalidate search caches")
	}
}

func validateSalon(salon *entities.Salon) error {
	if strings.TrimSpace(salon.Name) == "" {
		return apperrors.NewValidationError("name is required")
	}
	if strings.TrimSpace(salon.Address) == "" {
		return apperrors.NewValidationError("address is required")
	}
	if salon.Rating < 0 || salon.Rating > maxRating {
		return apperrors.NewValidationError("rating must be between 0 and 5")
	}
	if salon.StartingPrice < 0 {
		return apperrors.NewValidationError("starting_price must not be negative")
	}
	return nil
}
