package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
)

const (
	// DefaultRecommendationLimit is the number of recommendations returned when no limit is given
	DefaultRecommendationLimit = 6
	// DefaultKNeighbors is the neighbourhood size when none is given
	DefaultKNeighbors = 10
	// DefaultHybridWeight is the collaborative share of the hybrid score
	DefaultHybridWeight = 0.6

	interactionRatingWeight  = 0.7
	interactionBookingWeight = 0.3
	maxBookingSignal         = 5
	alreadyLikedThreshold    = 4.0

	contentRatingWeight   = 0.3
	contentPriceWeight    = 0.25
	contentCategoryWeight = 0.25
	contentLocationWeight = 0.2
	contentPriceScale     = 1000.0
	neutralContentScore   = 0.3

	wilsonZ = 1.96
)

// PopularityWeights are the weights of the popularity fallback score
type PopularityWeights struct {
	Wilson   float64
	Bookings float64
	Reviews  float64
}

// Sum returns the total of all weights
func (w PopularityWeights) Sum() float64 {
	return sumWeights(w.Wilson, w.Bookings, w.Reviews)
}

// DefaultPopularityWeights sum to 1.0
var DefaultPopularityWeights = PopularityWeights{Wilson: 0.5, Bookings: 0.3, Reviews: 0.2}

const (
	bookingSaturation = 50.0
	reviewSaturation  = 20.0
)

// RecommendOptions configures a hybrid recommendation call. Zero values fall
// back to the defaults.
type RecommendOptions struct {
	Interactions    []entities.Interaction
	UserPreferences entities.UserPreferences
	Limit           int
	KNeighbors      int
	HybridWeight    *float64
}

// HybridRecommender blends user-user collaborative filtering with
// content-based scoring.
type HybridRecommender struct{}

// NewHybridRecommender creates a new hybrid recommender
func NewHybridRecommender() *HybridRecommender {
	return &HybridRecommender{}
}

type neighbour struct {
	userID     string
	similarity float64
}

// Recommend ranks salons for userID. It returns an empty slice when userID
// is empty or there are no salons.
func (r *HybridRecommender) Recommend(userID string, salons []entities.Salon, opts RecommendOptions) []entities.Recommendation {
	if userID == "" || len(salons) == 0 {
		return []entities.Recommendation{}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	k := opts.KNeighbors
	if k <= 0 {
		k = DefaultKNeighbors
	}
	hybridWeight := DefaultHybridWeight
	if opts.HybridWeight != nil {
		hybridWeight = *opts.HybridWeight
	}

	salonIDs := make([]string, 0, len(salons))
	for i := range salons {
		if salons[i].ID != "" {
			salonIDs = append(salonIDs, salons[i].ID)
		}
	}

	users := distinctUsers(opts.Interactions, userID)
	var cf map[string]float64
	if len(opts.Interactions) > 0 && len(users) > 1 {
		matrix := buildInteractionMatrix(opts.Interactions)
		neighbours := similarUsers(userID, users, matrix, salonIDs, k)
		cf = collaborativeScores(userID, matrix, neighbours, salonIDs)
	}

	recs := make([]entities.Recommendation, len(salons))
	for i := range salons {
		cfScore := cf[salons[i].ID]
		cbScore := contentScore(&salons[i], opts.UserPreferences)

		method := entities.RecommendationMethodContentBased
		final := cbScore
		if cfScore > 0 {
			method = entities.RecommendationMethodHybrid
			final = (cfScore/5)*hybridWeight + cbScore*(1-hybridWeight)
		}

		recs[i] = entities.Recommendation{
			Salon:              salons[i],
			Score:              round(final, 3),
			CollaborativeScore: floatPtr(round(cfScore/5, 3)),
			ContentScore:       floatPtr(round(cbScore, 3)),
			Method:             method,
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// Popular ranks salons by the popularity fallback score
func (r *HybridRecommender) Popular(salons []entities.Salon, limit int) []entities.Recommendation {
	ranked := rankByPopularity(salons, limit, (*entities.Salon).PopularitySignals)
	recs := make([]entities.Recommendation, len(ranked))
	for i, item := range ranked {
		recs[i] = entities.Recommendation{
			Salon:  item.value,
			Score:  item.score,
			Method: entities.RecommendationMethodPopularity,
		}
	}
	return recs
}

// PopularProducts ranks products by the same popularity score as salons
func (r *HybridRecommender) PopularProducts(products []entities.Product, limit int) []entities.ProductRecommendation {
	ranked := rankByPopularity(products, limit, (*entities.Product).PopularitySignals)
	recs := make([]entities.ProductRecommendation, len(ranked))
	for i, item := range ranked {
		recs[i] = entities.ProductRecommendation{
			Product: item.value,
			Score:   item.score,
			Method:  entities.RecommendationMethodPopularity,
		}
	}
	return recs
}

type popularItem[T any] struct {
	value T
	score float64
}

// rankByPopularity orders items by descending popularity, keeping input
// order for ties, and truncates to limit.
func rankByPopularity[T any](items []T, limit int, signals func(*T) entities.PopularitySignals) []popularItem[T] {
	if len(items) == 0 {
		return []popularItem[T]{}
	}
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	ranked := make([]popularItem[T], len(items))
	for i := range items {
		ranked[i] = popularItem[T]{value: items[i], score: SignalPopularity(signals(&items[i]))}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// PopularityScore combines the Wilson lower bound of the rating with booking
// and review saturation.
func PopularityScore(salon *entities.Salon) float64 {
	return SignalPopularity(salon.PopularitySignals())
}

// SignalPopularity is PopularityScore for any rated item
func SignalPopularity(sig entities.PopularitySignals) float64 {
	reviews := float64(sig.TotalReviews)
	volume := float64(sig.Volume)

	w := DefaultPopularityWeights
	score := wilsonLowerBound(sig.Rating/maxRating, reviews)*w.Wilson +
		math.Min(1, volume/bookingSaturation)*w.Bookings +
		math.Min(1, reviews/reviewSaturation)*w.Reviews
	return round(math.Max(0, score), 3)
}

// wilsonLowerBound is the lower bound of the Wilson score interval for phat
// over n observations; n < 1 is treated as a single observation.
func wilsonLowerBound(phat, n float64) float64 {
	if n < 1 {
		n = 1
	}
	z2 := wilsonZ * wilsonZ
	return (phat + z2/(2*n) - wilsonZ*math.Sqrt((phat*(1-phat)+z2/(4*n))/n)) / (1 + z2/n)
}

func distinctUsers(interactions []entities.Interaction, target string) []string {
	seen := make(map[string]bool, len(interactions)+1)
	users := make([]string, 0, len(interactions)+1)
	for _, in := range interactions {
		if in.UserID != "" && !seen[in.UserID] {
			seen[in.UserID] = true
			users = append(users, in.UserID)
		}
	}
	if !seen[target] {
		users = append(users, target)
	}
	return users
}

// buildInteractionMatrix returns a sparse user -> salon -> strength matrix.
// Absent cells are 0.
func buildInteractionMatrix(interactions []entities.Interaction) map[string]map[string]float64 {
	matrix := make(map[string]map[string]float64)
	for _, in := range interactions {
		if in.UserID == "" || in.SalonID == "" {
			continue
		}
		row, ok := matrix[in.UserID]
		if !ok {
			row = make(map[string]float64)
			matrix[in.UserID] = row
		}
		strength := in.Rating*interactionRatingWeight + float64(min(in.BookingCount, maxBookingSignal))*interactionBookingWeight
		row[in.SalonID] = math.Max(strength, row[in.SalonID])
	}
	return matrix
}

// cosineSimilarity compares two sparse rows over the given item space
func cosineSimilarity(a, b map[string]float64, items []string) float64 {
	var dot, normA, normB float64
	for _, id := range items {
		x, y := a[id], b[id]
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func similarUsers(target string, users []string, matrix map[string]map[string]float64, items []string, k int) []neighbour {
	targetRow := matrix[target]
	neighbours := make([]neighbour, 0, len(users))
	for _, u := range users {
		if u == target {
			continue
		}
		if sim := cosineSimilarity(targetRow, matrix[u], items); sim > 0 {
			neighbours = append(neighbours, neighbour{userID: u, similarity: sim})
		}
	}
	sort.SliceStable(neighbours, func(i, j int) bool {
		return neighbours[i].similarity > neighbours[j].similarity
	})
	if len(neighbours) > k {
		neighbours = neighbours[:k]
	}
	return neighbours
}

// collaborativeScores predicts a 0-5 score per salon as the similarity
// weighted average of the neighbours who interacted with it. Salons the
// target already rates highly are skipped.
func collaborativeScores(target string, matrix map[string]map[string]float64, neighbours []neighbour, items []string) map[string]float64 {
	targetRow := matrix[target]
	scores := make(map[string]float64, len(items))
	for _, id := range items {
		if targetRow[id] >= alreadyLikedThreshold {
			continue
		}
		var weighted, simSum float64
		for _, n := range neighbours {
			if v := matrix[n.userID][id]; v > 0 {
				weighted += n.similarity * v
				simSum += n.similarity
			}
		}
		if simSum > 0 {
			scores[id] = weighted / simSum
		}
	}
	return scores
}

// contentScore matches salon attributes against the user's preferences
func contentScore(salon *entities.Salon, prefs entities.UserPreferences) float64 {
	score := 0.0
	factors := 0

	if salon.Rating != 0 {
		score += (salon.Rating / maxRating) * contentRatingWeight
		factors++
	}

	if salon.StartingPrice != 0 && prefs.AvgSpend != 0 {
		diff := math.Abs(salon.StartingPrice - prefs.AvgSpend)
		score += math.Max(0, 1-diff/contentPriceScale) * contentPriceWeight
		factors++
	}

	if len(prefs.PreferredCategories) > 0 && salon.Category != "" {
		category := strings.ToLower(salon.Category)
		for _, c := range prefs.PreferredCategories {
			if strings.Contains(category, strings.ToLower(c)) {
				score += contentCategoryWeight
				factors++
				break
			}
		}
	}

	if prefs.PreferredLocation != "" && salon.Address != "" {
		if strings.Contains(strings.ToLower(salon.Address), strings.ToLower(prefs.PreferredLocation)) {
			score += contentLocationWeight
			factors++
		}
	}

	if factors == 0 {
		return neutralContentScore
	}
	return score
}

// RecommendationRequest is the input of the recommendation pipeline
type RecommendationRequest struct {
	UserID            string
	Limit             int
	PreferredLocation string
	PreferredCategory string
}

// RecommendationService is the recommendation pipeline: personalised when
// the user has interaction history, popularity based otherwise.
type RecommendationService struct {
	salonRepo       repositories.SalonRepository
	bookingRepo     repositories.BookingRepository
	interactionRepo repositories.InteractionRepository
	recommender     *HybridRecommender
	defaultLimit    int
	hybridWeight    float64
}

// NewRecommendationService creates a new recommendation pipeline
func NewRecommendationService(
	salonRepo repositories.SalonRepository,
	bookingRepo repositories.BookingRepository,
	interactionRepo repositories.InteractionRepository,
	recommender *HybridRecommender,
	defaultLimit int,
	hybridWeight float64,
) *RecommendationService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultRecommendationLimit
	}
	return &RecommendationService{
		salonRepo:       salonRepo,
		bookingRepo:     bookingRepo,
		interactionRepo: interactionRepo,
		recommender:     recommender,
		defaultLimit:    defaultLimit,
		hybridWeight:    hybridWeight,
	}
}

// Recommend loads the catalog and interaction history and runs the pipeline
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendationRequest) ([]entities.Recommendation, error) {
	salons, err := s.salonRepo.List(ctx, repositories.SalonFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list salons: %w", err)
	}

	var interactions []entities.Interaction
	prefs := entities.UserPreferences{PreferredLocation: req.PreferredLocation}
	if req.PreferredCategory != "" {
		prefs.PreferredCategories = []string{req.PreferredCategory}
	}
	if req.UserID != "" {
		interactions, err = s.interactionRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list interactions: %w", err)
		}
		if err := s.inferPreferences(ctx, req.UserID, salons, &prefs); err != nil {
			return nil, err
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	recs := s.Run(salons, req.UserID, interactions, prefs, limit)

	observability.LoggerFromContext(ctx).Debug().
		Str("user_id", req.UserID).
		Int("interactions", len(interactions)).
		Int("results", len(recs)).
		Msg("recommendations computed")
	return recs, nil
}

// Run is the pure pipeline over already loaded data
func (s *RecommendationService) Run(salons []entities.Salon, userID string, interactions []entities.Interaction, prefs entities.UserPreferences, limit int) []entities.Recommendation {
	if len(salons) == 0 {
		return []entities.Recommendation{}
	}
	if userID != "" && len(interactions) > 0 {
		hw := s.hybridWeight
		return s.recommender.Recommend(userID, salons, RecommendOptions{
			Interactions:    interactions,
			UserPreferences: prefs,
			Limit:           limit,
			KNeighbors:      NeighbourCount(len(interactions)),
			HybridWeight:    &hw,
		})
	}
	return s.recommender.Popular(salons, limit)
}

// NeighbourCount sizes the neighbourhood from the amount of history:
// min(10, n/2), but never less than one.
func NeighbourCount(interactions int) int {
	return max(1, min(DefaultKNeighbors, interactions/2))
}

// inferPreferences fills unset preferences from the user's booking history
func (s *RecommendationService) inferPreferences(ctx context.Context, userID string, salons []entities.Salon, prefs *entities.UserPreferences) error {
	if s.bookingRepo == nil {
		return nil
	}
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list user bookings: %w", err)
	}

	categories := make(map[string]string, len(salons))
	for i := range salons {
		categories[salons[i].ID] = salons[i].Category
	}

	inferCategories := len(prefs.PreferredCategories) == 0
	var spend float64
	priced := 0
	seen := make(map[string]bool)
	for i := range bookings {
		if !bookings[i].Occupies() {
			continue
		}
		if bookings[i].Price > 0 {
			spend += bookings[i].Price
			priced++
		}
		if !inferCategories {
			continue
		}
		if c := categories[bookings[i].SalonID]; c != "" && !seen[c] {
			seen[c] = true
			prefs.PreferredCategories = append(prefs.PreferredCategories, c)
		}
	}
	if priced > 0 && prefs.AvgSpend == 0 {
		prefs.AvgSpend = spend / float64(priced)
	}
	return nil
}
