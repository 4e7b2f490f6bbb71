package evaluation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/booksaloon/backend/internal/domain/entities"
)

// LoadGoldenQueries reads and parses a golden query set from a JSON file.
func LoadGoldenQueries(path string) ([]GoldenQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden queries file: %w", err)
	}

	var queries []GoldenQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse golden queries: %w", err)
	}

	return queries, nil
}

// LoadCatalog reads a salon catalog snapshot from a JSON array file
func LoadCatalog(path string) ([]entities.Salon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var salons []entities.Salon
	if err := json.Unmarshal(data, &salons); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return salons, nil
}

// ValidateGoldenQueries checks that all golden queries have required fields
// and valid values. With a non-nil catalog, every expected salon must exist.
func ValidateGoldenQueries(queries []GoldenQuery, catalog []entities.Salon) error {
	seen := make(map[string]struct{}, len(queries))

	var known map[string]struct{}
	if catalog != nil {
		known = make(map[string]struct{}, len(catalog))
		for _, s := range catalog {
			known[s.ID] = struct{}{}
		}
	}

	for i, q := range queries {
		if q.ID == "" {
			return fmt.Errorf("query at index %d: missing id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("query at index %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}

		if q.Query == "" {
			return fmt.Errorf("query %q: missing query text", q.ID)
		}
		if len(q.ExpectedSalonIDs) == 0 {
			return fmt.Errorf("query %q: no expected salons", q.ID)
		}
		if !q.Difficulty.IsValid() {
			return fmt.Errorf("query %q: invalid difficulty %q (must be easy/medium/hard)", q.ID, q.Difficulty)
		}
		if known == nil {
			continue
		}
		for _, id := range q.ExpectedSalonIDs {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("query %q: expected salon %q is not in the catalog", q.ID, id)
			}
		}
	}

	return nil
}
