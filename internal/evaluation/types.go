package evaluation

import "time"

// Difficulty grades how hard a golden query is for the engine
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"   // exact service or name match
	DifficultyMedium Difficulty = "medium" // synonym or category match
	DifficultyHard   Difficulty = "hard"   // typos, vague intent
)

// IsValid checks if the difficulty is one of the defined constants
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// GoldenQuery is a labeled query with the salons it should retrieve
type GoldenQuery struct {
	ID               string     `json:"id"`
	Query            string     `json:"query"`
	ExpectedSalonIDs []string   `json:"expected_salon_ids"`
	Difficulty       Difficulty `json:"difficulty"`
}

// EvalResult holds the evaluation outcome for a single query
type EvalResult struct {
	QueryID      string        `json:"query_id"`
	Query        string        `json:"query"`
	Difficulty   Difficulty    `json:"difficulty"`
	RecallAt10   float64       `json:"recall_at_10"`
	MRRAt10      float64       `json:"mrr_at_10"`
	ResultCount  int           `json:"result_count"`
	RetrievedIDs []string      `json:"retrieved_ids"`
	Latency      time.Duration `json:"latency_ns"`
	Err          string        `json:"error,omitempty"`
}

// EvalSummary holds aggregate metrics across all golden queries
type EvalSummary struct {
	TotalQueries    int                               `json:"total_queries"`
	FailedQueries   int                               `json:"failed_queries"`
	AvgRecallAt10   float64                           `json:"avg_recall_at_10"`
	AvgMRRAt10      float64                           `json:"avg_mrr_at_10"`
	AvgLatency      time.Duration                     `json:"avg_latency_ns"`
	QueriesWithHits int                               `json:"queries_with_hits"`
	ByDifficulty    map[Difficulty]*DifficultySummary `json:"by_difficulty"`
	Results         []EvalResult                      `json:"results"`
}

// DifficultySummary holds metrics grouped by difficulty
type DifficultySummary struct {
	Count         int     `json:"count"`
	AvgRecallAt10 float64 `json:"avg_recall_at_10"`
	AvgMRRAt10    float64 `json:"avg_mrr_at_10"`
}
