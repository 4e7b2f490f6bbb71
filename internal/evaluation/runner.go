package evaluation

import (
	"context"
	"time"

	"github.com/booksaloon/backend/internal/domain/entities"
)

const cutoff = 10

// SearchResultProvider is the search pipeline under evaluation
type SearchResultProvider interface {
	Search(ctx context.Context, query string, limit int) ([]entities.SalonResult, error)
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	searchService SearchResultProvider
}

func NewRunner(svc SearchResultProvider) *Runner {
	return &Runner{searchService: svc}
}

// Run evaluates every query. A failing query scores zero and is counted in
// FailedQueries; it does not abort the run.
func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByDifficulty: make(map[Difficulty]*DifficultySummary),
		Results:      make([]EvalResult, 0, len(queries)),
	}

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		results, err := r.searchService.Search(ctx, gq.Query, cutoff)
		duration := time.Since(start)

		result := EvalResult{
			QueryID:    gq.ID,
			Query:      gq.Query,
			Difficulty: gq.Difficulty,
			Latency:    duration,
		}

		if err != nil {
			result.Err = err.Error()
			summary.FailedQueries++
		} else {
			ids := make([]string, len(results))
			for i, res := range results {
				ids[i] = res.ID
			}
			result.RetrievedIDs = ids
			result.ResultCount = len(results)
			result.RecallAt10 = RecallAtK(gq.ExpectedSalonIDs, ids, cutoff)
			result.MRRAt10 = MRRAtK(gq.ExpectedSalonIDs, ids, cutoff)
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.Results = append(s.Results, res)
	s.AvgRecallAt10 += res.RecallAt10
	s.AvgMRRAt10 += res.MRRAt10
	s.AvgLatency += res.Latency
	if res.ResultCount > 0 {
		s.QueriesWithHits++
	}

	ds, ok := s.ByDifficulty[res.Difficulty]
	if !ok {
		ds = &DifficultySummary{}
		s.ByDifficulty[res.Difficulty] = ds
	}
	ds.Count++
	ds.AvgRecallAt10 += res.RecallAt10
	ds.AvgMRRAt10 += res.MRRAt10
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.AvgRecallAt10 /= n
		s.AvgMRRAt10 /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			n := float64(ds.Count)
			ds.AvgRecallAt10 /= n
			ds.AvgMRRAt10 /= n
		}
	}
}
