package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/evaluation"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
	"github.com/booksaloon/backend/pkg/config"
)

// catalogSearch runs the search pipeline over an in-memory catalog
type catalogSearch struct {
	engine  *services.SearchService
	catalog []entities.Salon
}

func (c *catalogSearch) Search(ctx context.Context, query string, limit int) ([]entities.SalonResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.engine.Run(entities.NewSalonResults(c.catalog), query, services.SearchOptions{Limit: limit}), nil
}

func main() {
	catalogPath := flag.String("catalog", "cmd/evaluate/testdata/catalog.json", "salon catalog JSON file")
	goldenPath := flag.String("golden", "cmd/evaluate/testdata/golden_queries.json", "golden queries JSON file")
	minRecall := flag.Float64("min-recall", 0, "fail when average recall@10 is below this")
	minMRR := flag.Float64("min-mrr", 0, "fail when average MRR@10 is below this")
	minHitRate := flag.Float64("min-hit-rate", 0, "fail when the share of queries with results is below this")
	verbose := flag.Bool("json", false, "print the full summary as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("salon-evaluate", cfg.Env)

	catalog, err := evaluation.LoadCatalog(*catalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}
	queries, err := evaluation.LoadGoldenQueries(*goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries, catalog); err != nil {
		log.Fatal().Err(err).Msg("invalid golden queries")
	}

	expander, err := services.NewTermExpansionService(cfg.Search.SynonymsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Search.SynonymsPath).Msg("failed to load synonyms")
	}
	engine := services.NewSearchService(
		nil,
		services.NewSemanticSearchService(expander),
		services.NewSearchRankingService(),
		nil,
		nil,
		services.SearchConfig{MinScore: cfg.Search.MinScore, DefaultLimit: cfg.Search.DefaultLimit},
	)

	runner := evaluation.NewRunner(&catalogSearch{engine: engine, catalog: catalog})
	summary, err := runner.Run(context.Background(), queries)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	if *verbose {
		out, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(out))
	}

	for difficulty, ds := range summary.ByDifficulty {
		log.Info().
			Str("difficulty", string(difficulty)).
			Int("queries", ds.Count).
			Float64("recall_at_10", ds.AvgRecallAt10).
			Float64("mrr_at_10", ds.AvgMRRAt10).
			Msg("difficulty breakdown")
	}
	log.Info().
		Int("queries", summary.TotalQueries).
		Int("hits", summary.QueriesWithHits).
		Int("failed", summary.FailedQueries).
		Float64("recall_at_10", summary.AvgRecallAt10).
		Float64("mrr_at_10", summary.AvgMRRAt10).
		Dur("avg_latency", summary.AvgLatency).
		Msg("evaluation complete")

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinRecallAt10: *minRecall,
		MinMRRAt10:    *minMRR,
		MinHitRate:    *minHitRate,
	})
	if violations := guardrails.Violations(summary); len(violations) > 0 {
		for _, v := range violations {
			log.Error().Str("violation", v).Msg("relevance regression")
		}
		os.Exit(1)
	}
}
