package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/providers"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
)

const searchCacheKeyPrefix = "search:salons:"

var (
	zeroResultCounterOnce sync.Once
	zeroResultCounter     metric.Int64Counter
)

// SearchOptions are the caller-facing knobs of the search pipeline
type SearchOptions struct {
	Limit     int     `json:"limit,omitempty"`
	SortBy    string  `json:"sort_by,omitempty"`
	SortOrder string  `json:"sort_order,omitempty"`
	MaxBudget float64 `json:"max_budget,omitempty"`
}

// SearchConfig holds the pipeline tuning parameters
type SearchConfig struct {
	MinScore        float64
	DefaultLimit    int
	CacheTTLSeconds int
}

// SearchService is the search pipeline: semantic filtering followed by
// feature ranking, or feature ranking alone for an empty query.
type SearchService struct {
	salonRepo repositories.SalonRepository
	semantic  *SemanticSearchService
	ranking   *SearchRankingService
	cache     providers.CacheProvider
	metrics   *observability.Metrics
	cfg       SearchConfig
}

// NewSearchService creates a new search pipeline. cache and metrics may be nil.
func NewSearchService(
	salonRepo repositories.SalonRepository,
	semantic *SemanticSearchService,
	ranking *SearchRankingService,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	cfg SearchConfig,
) *SearchService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultSemanticMaxResults
	}
	return &SearchService{
		salonRepo: salonRepo,
		semantic:  semantic,
		ranking:   ranking,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Search loads the salon catalog and runs the pipeline, serving repeated
// queries from the cache when one is configured.
func (s *SearchService) Search(ctx context.Context, query string, opts SearchOptions) ([]entities.SalonResult, error) {
	ctx, span := observability.StartSpan(ctx, "SearchService.Search")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("search.query", query))

	logger := observability.LoggerFromContext(ctx)
	key := s.cacheKey(query, opts)

	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	salons, err := s.salonRepo.List(ctx, repositories.SalonFilter{})
	if s.metrics != nil {
		observability.RecordDBMetric(ctx, s.metrics, "salons.list", time.Since(start))
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("failed to list salons: %w", err)
	}

	results := s.Run(entities.NewSalonResults(salons), query, opts)
	if strings.TrimSpace(query) != "" && len(results) == 0 {
		recordZeroResult(ctx, query)
	}

	event := logger.Debug().
		Str("query", query).
		Int("candidates", len(salons)).
		Int("results", len(results))
	if len(results) > 0 {
		event = event.Str("top_result", results[0].ID)
	}
	event.Msg("search completed")

	s.toCache(ctx, key, results)
	return results, nil
}

// Run is the pure pipeline over already loaded candidates
func (s *SearchService) Run(candidates []entities.SalonResult, query string, opts SearchOptions) []entities.SalonResult {
	if len(candidates) == 0 {
		return []entities.SalonResult{}
	}

	if strings.TrimSpace(query) == "" {
		return s.ranking.Rank(candidates, RankPreferences{
			SortBy:    opts.SortBy,
			SortOrder: opts.SortOrder,
		})
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	minScore := s.cfg.MinScore

	matched := s.semantic.Search(query, candidates, SemanticSearchOptions{
		MinScore:   &minScore,
		MaxResults: limit,
	})
	ranked := s.ranking.Rank(matched, RankPreferences{
		SearchTerms: SearchTermsFromQuery(query),
		MaxBudget:   opts.MaxBudget,
		SortBy:      opts.SortBy,
		SortOrder:   opts.SortOrder,
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (s *SearchService) cacheKey(query string, opts SearchOptions) string {
	raw := fmt.Sprintf("%s|%d|%s|%s|%g", strings.ToLower(strings.TrimSpace(query)), opts.Limit, opts.SortBy, opts.SortOrder, opts.MaxBudget)
	hash := sha256.Sum256([]byte(raw))
	return searchCacheKeyPrefix + hex.EncodeToString(hash[:])
}

func (s *SearchService) fromCache(ctx context.Context, key string) ([]entities.SalonResult, bool) {
	if s.cache == nil || s.cfg.CacheTTLSeconds <= 0 {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil || len(data) == 0 {
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, searchCacheKeyPrefix)
		}
		return nil, false
	}
	var results []entities.SalonResult
	if err := json.Unmarshal(data, &results); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("discarding unreadable search cache entry")
		return nil, false
	}
	if s.metrics != nil {
		observability.RecordCacheHit(ctx, s.metrics, searchCacheKeyPrefix)
	}
	return results, true
}

func (s *SearchService) toCache(ctx context.Context, key string, results []entities.SalonResult) {
	if s.cache == nil || s.cfg.CacheTTLSeconds <= 0 {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTLSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to cache search results")
	}
}

func initZeroResultCounter() {
	meter := otel.Meter("github.com/booksaloon/backend/search")
	counter, err := meter.Int64Counter(
		"search.zero_result.count",
		metric.WithDescription("Count of non-empty queries that matched no salon"),
	)
	if err == nil {
		zeroResultCounter = counter
	}
}

func recordZeroResult(ctx context.Context, query string) {
	zeroResultCounterOnce.Do(initZeroResultCounter)
	if zeroResultCounter == nil {
		return
	}
	zeroResultCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("search.query", query)))
}
