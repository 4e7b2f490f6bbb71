package services

import (
	"context"
	"strings"
	"time"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
)

// QuerySearcher is the part of the search pipeline the warmer drives
type QuerySearcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]entities.SalonResult, error)
}

// CacheWarmingService keeps popular search queries in the search cache
type CacheWarmingService struct {
	search  QuerySearcher
	queries []string
}

// NewCacheWarmingService creates a new cache warming service. Blank and
// duplicate queries are dropped.
func NewCacheWarmingService(search QuerySearcher, queries []string) *CacheWarmingService {
	seen := make(map[string]struct{}, len(queries))
	kept := make([]string, 0, len(queries))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, q)
	}
	return &CacheWarmingService{search: search, queries: kept}
}

// Queries returns the queries that get warmed
func (s *CacheWarmingService) Queries() []string {
	return s.queries
}

// WarmCache runs every popular query once with default options and returns
// how many succeeded. A failing query is logged and skipped.
func (s *CacheWarmingService) WarmCache(ctx context.Context) int {
	logger := observability.LoggerFromContext(ctx)

	warmed := 0
	for _, q := range s.queries {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.search.Search(ctx, q, SearchOptions{}); err != nil {
			logger.Warn().Err(err).Str("query", q).Msg("failed to warm search query")
			continue
		}
		warmed++
	}

	logger.Debug().Int("warmed", warmed).Int("total", len(s.queries)).Msg("search cache warmed")
	return warmed
}

// StartPeriodicWarming warms once, then again on every tick until ctx is
// cancelled.
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if len(s.queries) == 0 || interval <= 0 {
		return
	}

	s.WarmCache(ctx)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				observability.LoggerFromContext(ctx).Info().Msg("stopping cache warming service")
				return
			case <-ticker.C:
				s.WarmCache(ctx)
			}
		}
	}()
	observability.LoggerFromContext(ctx).Info().Dur("interval", interval).Int("queries", len(s.queries)).Msg("started periodic cache warming")
}
