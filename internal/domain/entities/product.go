package entities

import "time"

// Product is a grooming product sold through the marketplace
type Product struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category" db:"category"`
	Description  string    `json:"description,omitempty" db:"description"`
	ImageURL     string    `json:"img,omitempty" db:"img"`
	Price        float64   `json:"price" db:"price"`
	Rating       float64   `json:"rating" db:"rating"`
	TotalReviews int       `json:"total_reviews" db:"total_reviews"`
	TotalSales   int       `json:"total_sales" db:"total_sales"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ProductRecommendation is a product annotated with its popularity score
type ProductRecommendation struct {
	Product
	Score  float64              `json:"recommendation_score"`
	Method RecommendationMethod `json:"method"`
}

// PopularitySignals are the item-agnostic inputs of popularity ranking.
// Bookings of a salon and sales of a product both count as Volume.
type PopularitySignals struct {
	Rating       float64
	TotalReviews int
	Volume       int
}

// PopularitySignals returns the popularity inputs of the salon
func (s *Salon) PopularitySignals() PopularitySignals {
	return PopularitySignals{Rating: s.Rating, TotalReviews: s.TotalReviews, Volume: s.TotalBookings}
}

// PopularitySignals returns the popularity inputs of the product
func (p *Product) PopularitySignals() PopularitySignals {
	return PopularitySignals{Rating: p.Rating, TotalReviews: p.TotalReviews, Volume: p.TotalSales}
}
