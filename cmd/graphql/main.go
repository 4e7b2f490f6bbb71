package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/booksaloon/backend/internal/adapters/cache"
	"github.com/booksaloon/backend/internal/adapters/database"
	"github.com/booksaloon/backend/internal/api/handlers"
	"github.com/booksaloon/backend/internal/api/middleware"
	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/providers"
	"github.com/booksaloon/backend/internal/graphql/resolvers"
	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
	"github.com/booksaloon/backend/internal/infrastructure/clients/redis"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
	"github.com/booksaloon/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	serviceName := cfg.OTEL.ServiceName + "-graphql"
	observability.InitLogger(serviceName, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, serviceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Search results are cached when Redis is reachable
	var cacheProvider providers.CacheProvider
	checks := map[string]handlers.Pinger{"postgres": pgClient}
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; search caching disabled")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		checks["redis"] = redisClient
	}

	salonRepo := database.NewSalonAdapter(pgClient)
	bookingRepo := database.NewBookingAdapter(pgClient)
	interactionRepo := database.NewInteractionAdapter(pgClient)
	productRepo := database.NewProductAdapter(pgClient)

	expander, err := services.NewTermExpansionService(cfg.Search.SynonymsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Search.SynonymsPath).Msg("failed to load synonyms")
	}
	ranking := services.NewSearchRankingService()
	recommender := services.NewHybridRecommender()

	salonService := services.NewSalonService(salonRepo, nil, ranking)
	searchService := services.NewSearchService(salonRepo, services.NewSemanticSearchService(expander), ranking, cacheProvider, metrics, services.SearchConfig{
		MinScore:        cfg.Search.MinScore,
		DefaultLimit:    cfg.Search.DefaultLimit,
		CacheTTLSeconds: cfg.Search.CacheTTLSeconds,
	})
	recommendationService := services.NewRecommendationService(
		salonRepo,
		bookingRepo,
		interactionRepo,
		recommender,
		cfg.Recommend.DefaultLimit,
		cfg.Recommend.HybridWeight,
	)
	productService := services.NewProductService(productRepo, recommender)

	graphqlHandler, err := resolvers.NewHandler(
		resolvers.NewResolver(salonService, searchService, recommendationService, productService),
		bookingRepo,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build GraphQL handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.NewHealthHandler(checks).Health)
	mux.Handle("/graphql", graphqlHandler)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(metrics, mux)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(cfg.Server.AllowedOrigins)(handler)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GraphQLPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("GraphQL server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("GraphQL server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("GraphQL server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("GraphQL server stopped")
}
