package entities

// SalonResult is a request-scoped view of a salon carrying derived scores.
// The embedded Salon is a copy; scores never flow back to the store.
type SalonResult struct {
	Salon
	RelevanceScore *float64         `json:"relevance_score,omitempty"`
	RankingScore   *float64         `json:"ranking_score,omitempty"`
	Features       *RankingFeatures `json:"ranking_features,omitempty"`
}

// RankingFeatures holds the normalized (0-1) feature scores of one salon
type RankingFeatures struct {
	Rating       float64 `json:"rating"`
	Proximity    float64 `json:"proximity"`
	PriceValue   float64 `json:"price_value"`
	Popularity   float64 `json:"popularity"`
	ServiceMatch float64 `json:"service_match"`
	Recency      float64 `json:"recency"`
	Availability float64 `json:"availability"`
}

// NewSalonResults wraps salons into unscored results, preserving order.
// A nil service list becomes empty so it serialises as [].
func NewSalonResults(salons []Salon) []SalonResult {
	results := make([]SalonResult, len(salons))
	for i := range salons {
		results[i] = SalonResult{Salon: salons[i]}
		if results[i].Services == nil {
			results[i].Services = []Service{}
		}
	}
	return results
}

// SalonIDs returns the ids of the results in order
func SalonIDs(results []SalonResult) []string {
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	return ids
}
