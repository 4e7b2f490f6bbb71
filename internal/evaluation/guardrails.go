package evaluation

import "fmt"

// GuardrailConfig holds the minimum acceptable relevance of a run. Zero
// values disable a check.
type GuardrailConfig struct {
	MinRecallAt10 float64
	MinMRRAt10    float64
	MinHitRate    float64
}

// Guardrails decide whether an evaluation run is a regression
type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	return &Guardrails{config: config}
}

// Violations lists every threshold the summary falls below. Failed
// queries are always a violation.
func (g *Guardrails) Violations(s *EvalSummary) []string {
	var out []string
	if s.FailedQueries > 0 {
		out = append(out, fmt.Sprintf("%d queries failed", s.FailedQueries))
	}
	if s.AvgRecallAt10 < g.config.MinRecallAt10 {
		out = append(out, fmt.Sprintf("recall@10 %.3f below %.3f", s.AvgRecallAt10, g.config.MinRecallAt10))
	}
	if s.AvgMRRAt10 < g.config.MinMRRAt10 {
		out = append(out, fmt.Sprintf("mrr@10 %.3f below %.3f", s.AvgMRRAt10, g.config.MinMRRAt10))
	}
	if s.TotalQueries > 0 {
		rate := float64(s.QueriesWithHits) / float64(s.TotalQueries)
		if rate < g.config.MinHitRate {
			out = append(out, fmt.Sprintf("hit rate %.3f below %.3f", rate, g.config.MinHitRate))
		}
	}
	return out
}
