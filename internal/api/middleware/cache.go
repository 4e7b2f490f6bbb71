package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/providers"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
)

// CacheConfig holds cache configuration for specific routes
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// CacheMiddleware provides HTTP response caching for catalog reads
type CacheMiddleware struct {
	cache        providers.CacheProvider
	metrics      *observability.Metrics
	routeConfigs map[string]CacheConfig
}

// NewCacheMiddleware creates a new cache middleware. Booking-dependent
// routes are never cached; they change with every reservation.
func NewCacheMiddleware(cache providers.CacheProvider, metrics *observability.Metrics) *CacheMiddleware {
	return &CacheMiddleware{
		cache:   cache,
		metrics: metrics,
		routeConfigs: map[string]CacheConfig{
			"/api/salons":         {TTLSeconds: 120, Enabled: true},
			"/api/salons/search":  {TTLSeconds: 300, Enabled: true},
			"/api/salons/suggest": {TTLSeconds: 180, Enabled: true},
			"/api/salons/":        {TTLSeconds: 600, Enabled: true}, // prefix match
		},
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		config := m.getRouteConfig(r.URL.Path)
		if !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		cacheKey := m.generateCacheKey(r)

		if cached, err := m.cache.Get(ctx, cacheKey); err == nil {
			m.recordHit(r, true)
			logger.Debug().Str("key", cacheKey).Msg("http cache hit")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		m.recordHit(r, false)
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(ctx, cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
			}
		}
	})
}

func (m *CacheMiddleware) recordHit(r *http.Request, hit bool) {
	if m.metrics == nil {
		return
	}
	if hit {
		observability.RecordCacheHit(r.Context(), m.metrics, services.HTTPCacheKeyPrefix)
		return
	}
	observability.RecordCacheMiss(r.Context(), m.metrics, services.HTTPCacheKeyPrefix)
}

// getRouteConfig gets the cache configuration for a route
func (m *CacheMiddleware) getRouteConfig(path string) CacheConfig {
	if strings.HasSuffix(path, "/availability") || strings.HasSuffix(path, "/bookings") || isEventStream(path) {
		return CacheConfig{Enabled: false}
	}

	if config, exists := m.routeConfigs[path]; exists {
		return config
	}

	// Prefix match for dynamic routes (e.g., /api/salons/{id})
	for pattern, config := range m.routeConfigs {
		if strings.HasSuffix(pattern, "/") && strings.HasPrefix(path, pattern) {
			return config
		}
	}

	return CacheConfig{Enabled: false}
}

// generateCacheKey keeps the path readable so that salon-scoped entries can
// be invalidated by pattern; the query string is hashed.
func (m *CacheMiddleware) generateCacheKey(r *http.Request) string {
	key := services.HTTPCacheKeyPrefix + r.Method + ":" + r.URL.Path
	if r.URL.RawQuery == "" {
		return key
	}

	// Encode sorts by key
	hash := sha256.Sum256([]byte(r.URL.Query().Encode()))
	return key + "?" + hex.EncodeToString(hash[:8])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
