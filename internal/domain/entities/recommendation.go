package entities

// Interaction is a raw collaborative signal between a user and a salon.
// Zero values mean the signal is absent.
type Interaction struct {
	UserID       string  `json:"user_id" db:"user_id"`
	SalonID      string  `json:"salon_id" db:"salon_id"`
	Rating       float64 `json:"rating,omitempty" db:"rating"`
	BookingCount int     `json:"booking_count,omitempty" db:"booking_count"`
}

// UserPreferences is the stated or inferred taste profile of a user
type UserPreferences struct {
	AvgSpend            float64  `json:"avg_spend,omitempty"`
	PreferredCategories []string `json:"preferred_categories,omitempty"`
	PreferredLocation   string   `json:"preferred_location,omitempty"`
}

// RecommendationMethod names how a recommendation score was produced
type RecommendationMethod string

const (
	RecommendationMethodHybrid       RecommendationMethod = "hybrid"
	RecommendationMethodContentBased RecommendationMethod = "content-based"
	RecommendationMethodPopularity   RecommendationMethod = "popularity"
)

// Recommendation is a salon annotated with its recommendation scores
type Recommendation struct {
	Salon
	Score              float64              `json:"recommendation_score"`
	CollaborativeScore *float64             `json:"collaborative_score,omitempty"`
	ContentScore       *float64             `json:"content_score,omitempty"`
	Method             RecommendationMethod `json:"method"`
}
