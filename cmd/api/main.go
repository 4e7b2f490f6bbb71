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
	"github.com/booksaloon/backend/internal/adapters/events"
	"github.com/booksaloon/backend/internal/adapters/search"
	"github.com/booksaloon/backend/internal/api/handlers"
	"github.com/booksaloon/backend/internal/api/middleware"
	"github.com/booksaloon/backend/internal/api/routes"
	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/providers"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
	"github.com/booksaloon/backend/internal/infrastructure/clients/redis"
	"github.com/booksaloon/backend/internal/infrastructure/clients/typesense"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
	"github.com/booksaloon/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
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
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
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

	if err := database.Migrate(ctx, pgClient); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Redis backs caching and booking events; the API runs without it
	var (
		redisClient   *redis.Client
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	redisClient, err = redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; caching and booking events disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	var (
		typesenseClient *typesense.Client
		suggestRepo     repositories.SalonSuggestRepository
	)
	if cfg.Typesense.URL != "" {
		typesenseClient, err = typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable; suggestions disabled")
			typesenseClient = nil
		} else if err := typesenseClient.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema; suggestions disabled")
			typesenseClient = nil
		} else {
			suggestRepo = search.NewTypesenseAdapter(typesenseClient)
		}
	}

	// Adapters
	salonRepo := database.NewSalonAdapter(pgClient)
	bookingRepo := database.NewBookingAdapter(pgClient)
	interactionRepo := database.NewInteractionAdapter(pgClient)
	productRepo := database.NewProductAdapter(pgClient)

	// Relevance engine
	expander, err := services.NewTermExpansionService(cfg.Search.SynonymsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Search.SynonymsPath).Msg("failed to load synonyms")
	}
	semantic := services.NewSemanticSearchService(expander)
	ranking := services.NewSearchRankingService()
	resolver := services.NewBookingResolver(services.NewSlotScoringService())
	recommender := services.NewHybridRecommender()

	// Services
	salonService := services.NewSalonService(salonRepo, suggestRepo, ranking)
	searchService := services.NewSearchService(salonRepo, semantic, ranking, cacheProvider, metrics, services.SearchConfig{
		MinScore:        cfg.Search.MinScore,
		DefaultLimit:    cfg.Search.DefaultLimit,
		CacheTTLSeconds: cfg.Search.CacheTTLSeconds,
	})
	bookingService := services.NewBookingService(bookingRepo, salonRepo, resolver, eventBus).
		WithDefaultHours(cfg.Booking.OpenHour, cfg.Booking.CloseHour)
	productService := services.NewProductService(productRepo, recommender)
	recommendationService := services.NewRecommendationService(
		salonRepo,
		bookingRepo,
		interactionRepo,
		recommender,
		cfg.Recommend.DefaultLimit,
		cfg.Recommend.HybridWeight,
	)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		invalidation := services.NewCacheInvalidationService(cacheProvider, eventBus)
		salonService.WithCacheInvalidator(invalidation)
		if err := invalidation.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		} else {
			defer invalidation.Stop()
		}
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)

		warmer := services.NewCacheWarmingService(searchService, cfg.Search.WarmQueries)
		warmer.StartPeriodicWarming(ctx, time.Duration(cfg.Search.WarmIntervalSeconds)*time.Second)
	}

	// Handlers
	checks := map[string]handlers.Pinger{"postgres": pgClient}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	if typesenseClient != nil {
		checks["typesense"] = typesenseClient
	}

	router := routes.NewRouter(
		handlers.NewSalonHandler(salonService, searchService),
		handlers.NewBookingHandler(bookingService),
		handlers.NewRecommendationHandler(recommendationService),
		handlers.NewHealthHandler(checks),
		cacheMiddleware,
		metrics,
		cfg.Server.AllowedOrigins,
	).WithProductHandler(handlers.NewProductHandler(productService))
	if eventBus != nil {
		router.WithSSEHandler(handlers.NewSSEHandler(eventBus, salonService))
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server exited")
}
