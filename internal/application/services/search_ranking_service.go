package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/booksaloon/backend/internal/domain/entities"
)

const (
	// DefaultMaxBudget is the upper price bound used when none is given
	DefaultMaxBudget = 2000.0

	bayesPriorMean  = 3.0
	bayesPriorCount = 5.0
	maxRating       = 5.0

	proximityMidpointKm = 5.0
	proximityScaleKm    = 2.0

	minInBudgetPriceScore = 0.3

	popularityBookingWeight = 0.6
	popularityReviewWeight  = 0.4

	recencyDecayDays     = 30.0
	fullAvailabilitySlot = 10.0

	neutralFeature           = 0.5
	noServicesScore          = 0.3
	unknownAvailabilityScore = 0.7
	sortOrderAsc             = "asc"
)

// FeatureWeights are the linear weights of the ranking features
type FeatureWeights struct {
	Rating       float64
	Proximity    float64
	PriceValue   float64
	Popularity   float64
	ServiceMatch float64
	Recency      float64
	Availability float64
}

// Sum returns the total of all weights
func (w FeatureWeights) Sum() float64 {
	return sumWeights(w.Rating, w.Proximity, w.PriceValue, w.Popularity, w.ServiceMatch, w.Recency, w.Availability)
}

// DefaultFeatureWeights sum to 1.0
var DefaultFeatureWeights = FeatureWeights{
	Rating:       0.28,
	Proximity:    0.22,
	PriceValue:   0.15,
	Popularity:   0.15,
	ServiceMatch: 0.10,
	Recency:      0.05,
	Availability: 0.05,
}

// RankPreferences personalises the ranking. SortBy, when set, bypasses
// scoring and orders by that numeric salon field.
type RankPreferences struct {
	MaxBudget   float64
	MinBudget   float64
	SearchTerms []string
	SortBy      string
	SortOrder   string

	// PreferredLocation is carried through from the request but does not
	// affect scores; proximity comes from DistanceKm.
	PreferredLocation string
}

// SearchTermsFromQuery lowercases and splits a query into service match terms
func SearchTermsFromQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// SearchRankingService orders salons by a weighted combination of quality
// and fit features.
type SearchRankingService struct {
	weights FeatureWeights
	now     func() time.Time
}

// NewSearchRankingService creates a ranking service with the default weights
func NewSearchRankingService() *SearchRankingService {
	return &SearchRankingService{
		weights: DefaultFeatureWeights,
		now:     time.Now,
	}
}

// WithClock overrides the clock used for recency
func (s *SearchRankingService) WithClock(now func() time.Time) *SearchRankingService {
	s.now = now
	return s
}

// Rank returns a new slice ordered by ranking score (or by SortBy). The
// returned results carry RankingScore and Features unless SortBy is set.
func (s *SearchRankingService) Rank(candidates []entities.SalonResult, prefs RankPreferences) []entities.SalonResult {
	if len(candidates) == 0 {
		return []entities.SalonResult{}
	}

	if prefs.SortBy != "" {
		return sortByField(candidates, prefs.SortBy, prefs.SortOrder)
	}

	now := s.now()
	maxPopularity := 1.0
	for i := range candidates {
		maxPopularity = math.Max(maxPopularity, popularity(&candidates[i].Salon))
	}

	results := make([]entities.SalonResult, len(candidates))
	for i := range candidates {
		salon := &candidates[i].Salon
		features := &entities.RankingFeatures{
			Rating:       ratingFeature(salon),
			Proximity:    proximityFeature(salon),
			PriceValue:   priceValueFeature(salon, prefs),
			Popularity:   clamp01(popularity(salon) / maxPopularity),
			ServiceMatch: serviceMatchFeature(salon, prefs.SearchTerms),
			Recency:      recencyFeature(salon, now),
			Availability: availabilityFeature(salon),
		}

		r := candidates[i]
		r.Features = features
		r.RankingScore = floatPtr(round(s.combine(features), 3))
		results[i] = r
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].RankingScore > *results[j].RankingScore
	})
	return results
}

func (s *SearchRankingService) combine(f *entities.RankingFeatures) float64 {
	w := s.weights
	return f.Rating*w.Rating +
		f.Proximity*w.Proximity +
		f.PriceValue*w.PriceValue +
		f.Popularity*w.Popularity +
		f.ServiceMatch*w.ServiceMatch +
		f.Recency*w.Recency +
		f.Availability*w.Availability
}

func sortByField(candidates []entities.SalonResult, field, order string) []entities.SalonResult {
	results := make([]entities.SalonResult, len(candidates))
	copy(results, candidates)
	asc := order == sortOrderAsc
	sort.SliceStable(results, func(i, j int) bool {
		a := results[i].NumericField(field)
		b := results[j].NumericField(field)
		if asc {
			return a < b
		}
		return a > b
	})
	return results
}

// ratingFeature is the Bayesian average rating normalized to 0-1
func ratingFeature(salon *entities.Salon) float64 {
	n := float64(salon.TotalReviews)
	bayes := (n*salon.Rating + bayesPriorCount*bayesPriorMean) / (n + bayesPriorCount)
	return bayes / maxRating
}

func proximityFeature(salon *entities.Salon) float64 {
	if salon.DistanceKm == nil {
		return neutralFeature
	}
	return 1 / (1 + math.Exp((*salon.DistanceKm-proximityMidpointKm)/proximityScaleKm))
}

func priceValueFeature(salon *entities.Salon, prefs RankPreferences) float64 {
	price := salon.StartingPrice
	if price == 0 {
		return neutralFeature
	}
	maxBudget := prefs.MaxBudget
	if !isFinite(maxBudget) || maxBudget <= 0 {
		maxBudget = DefaultMaxBudget
	}
	minBudget := prefs.MinBudget
	if !isFinite(minBudget) || minBudget < 0 {
		minBudget = 0
	}

	if price <= maxBudget {
		mid := (maxBudget + minBudget) / 2
		deviation := math.Abs(price-mid) / (maxBudget - minBudget + 1)
		return math.Max(minInBudgetPriceScore, 1-deviation)
	}
	return math.Max(0, 1-(price-maxBudget)/maxBudget)
}

// popularity is relative: callers normalize it against the candidate set
func popularity(salon *entities.Salon) float64 {
	return float64(salon.TotalBookings)*popularityBookingWeight + float64(salon.TotalReviews)*popularityReviewWeight
}

func serviceMatchFeature(salon *entities.Salon, terms []string) float64 {
	if len(terms) == 0 {
		return neutralFeature
	}
	if len(salon.Services) == 0 {
		return noServicesScore
	}

	names := salon.ServiceNames()
	for i := range names {
		names[i] = strings.ToLower(names[i])
	}

	matches := 0
	for _, term := range terms {
		for _, name := range names {
			if strings.Contains(name, term) || strings.Contains(term, name) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(terms))
}

func recencyFeature(salon *entities.Salon, now time.Time) float64 {
	seen, ok := salon.LastSeen()
	if !ok {
		return neutralFeature
	}
	days := now.Sub(seen).Hours() / 24
	return math.Exp(-days / recencyDecayDays)
}

func availabilityFeature(salon *entities.Salon) float64 {
	if salon.IsFullyBooked {
		return 0
	}
	if salon.AvailableSlots == nil {
		return unknownAvailabilityScore
	}
	return math.Min(1, float64(*salon.AvailableSlots)/fullAvailabilitySlot)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
