package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/booksaloon/backend/internal/adapters/database"
	"github.com/booksaloon/backend/internal/adapters/search"
	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
	"github.com/booksaloon/backend/internal/infrastructure/clients/typesense"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
	"github.com/booksaloon/backend/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("booksaloon-indexer", cfg.Env)

	if cfg.Typesense.URL == "" {
		log.Fatal().Msg("TYPESENSE_URL is not set")
	}

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", tsClient.Collection()).Msg("resetting collection")
		if err := tsClient.DropCollection(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	stats, err := indexCatalog(ctx, database.NewSalonAdapter(pgClient), search.NewTypesenseAdapter(tsClient), defaultPageSize)
	if err != nil {
		return err
	}

	log.Info().
		Int("indexed", stats.Indexed).
		Int("failed", stats.Failed).
		Msg("salon catalog indexed")
	return nil
}
