package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
)

const defaultPageSize = 500

// salonLister is the part of the salon store the indexer reads
type salonLister interface {
	List(ctx context.Context, filter repositories.SalonFilter) ([]entities.Salon, error)
}

// salonIndexer is the part of the suggestion index the indexer writes
type salonIndexer interface {
	Index(ctx context.Context, salon *entities.Salon) error
}

type indexStats struct {
	Indexed int
	Failed  int
}

// indexCatalog pages through the whole catalog and upserts every salon.
// Per-salon failures are counted and skipped; a failed page aborts.
func indexCatalog(ctx context.Context, salons salonLister, index salonIndexer, pageSize int) (indexStats, error) {
	var stats indexStats
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		page, err := salons.List(ctx, repositories.SalonFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return stats, fmt.Errorf("failed to list salons at offset %d: %w", offset, err)
		}

		for i := range page {
			if err := index.Index(ctx, &page[i]); err != nil {
				stats.Failed++
				log.Warn().Err(err).Str("salon_id", page[i].ID).Msg("failed to index salon")
				continue
			}
			stats.Indexed++
		}

		if len(page) < pageSize {
			return stats, nil
		}
	}
}
