package services

import (
	"sort"
	"strings"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/pkg/utils"
)

const (
	// DefaultSemanticMinScore is the inclusion threshold when none is given
	DefaultSemanticMinScore = 0.5
	// DefaultSemanticMaxResults caps the result set when no cap is given
	DefaultSemanticMaxResults = 50

	exactMatchFactor     = 1.0
	substringMatchFactor = 0.6
	fuzzyMatchFactor     = 0.4
	phraseBonusFactor    = 1.5
	crossFieldBonus      = 0.15
)

// searchField is one weighted text field of a salon
type searchField struct {
	name   string
	weight float64
}

var semanticFields = []searchField{
	{name: "name", weight: 3.0},
	{name: "category", weight: 2.5},
	{name: "services", weight: 2.0},
	{name: "address", weight: 1.5},
	{name: "description", weight: 1.0},
}

// SemanticSearchOptions configures a semantic search call. Zero values fall
// back to the defaults.
type SemanticSearchOptions struct {
	MinScore   *float64
	MaxResults int
}

// SemanticSearchService scores salons against a free-text query using
// synonym expansion, weighted multi-field matching and typo tolerance.
type SemanticSearchService struct {
	expander *TermExpansionService
}

// NewSemanticSearchService creates a new semantic search service
func NewSemanticSearchService(expander *TermExpansionService) *SemanticSearchService {
	return &SemanticSearchService{expander: expander}
}

// Search returns the candidates matching query with RelevanceScore set,
// ordered by descending score. A blank query returns the candidates unchanged.
func (s *SemanticSearchService) Search(query string, candidates []entities.SalonResult, opts SemanticSearchOptions) []entities.SalonResult {
	if strings.TrimSpace(query) == "" {
		return candidates
	}
	if len(candidates) == 0 {
		return []entities.SalonResult{}
	}

	minScore := DefaultSemanticMinScore
	if opts.MinScore != nil {
		minScore = *opts.MinScore
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultSemanticMaxResults
	}

	queryTerms := utils.Tokenize(query)
	if len(queryTerms) == 0 {
		return candidates
	}
	expandedTerms := s.expander.ExpandTokens(queryTerms)

	results := make([]entities.SalonResult, 0, len(candidates))
	for i := range candidates {
		score := RelevanceScore(queryTerms, expandedTerms, &candidates[i].Salon)
		if score < minScore {
			continue
		}
		r := candidates[i]
		r.RelevanceScore = floatPtr(score)
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].RelevanceScore > *results[j].RelevanceScore
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// RelevanceScore scores a single salon. queryTerms are the tokenized query,
// expandedTerms the query after synonym expansion.
func RelevanceScore(queryTerms, expandedTerms []string, salon *entities.Salon) float64 {
	total := 0.0
	matchedFields := 0

	for _, field := range semanticFields {
		text := fieldText(salon, field.name)
		tokens := utils.Tokenize(text)
		fieldScore := 0.0

		for _, term := range expandedTerms {
			for _, token := range tokens {
				switch {
				case token == term:
					fieldScore += exactMatchFactor * field.weight
				case strings.Contains(token, term) || strings.Contains(term, token):
					fieldScore += substringMatchFactor * field.weight
				case utils.IsFuzzyMatch(term, token):
					fieldScore += fuzzyMatchFactor * field.weight
				}
			}
		}

		// Raw text, so "air" matches inside "hair"
		lowered := strings.ToLower(text)
		for _, term := range queryTerms {
			if strings.Contains(lowered, term) {
				fieldScore += phraseBonusFactor * field.weight
			}
		}

		if fieldScore > 0 {
			matchedFields++
			total += fieldScore
		}
	}

	if matchedFields > 1 {
		total *= 1 + float64(matchedFields)*crossFieldBonus
	}
	if salon.Rating > 0 {
		total *= 1 + salon.Rating/10
	}
	return round(total, 2)
}

func fieldText(salon *entities.Salon, field string) string {
	switch field {
	case "name":
		return salon.Name
	case "category":
		return salon.Category
	case "services":
		return strings.Join(salon.ServiceNames(), " ")
	case "address":
		return salon.Address
	case "description":
		return salon.Description
	}
	return ""
}
