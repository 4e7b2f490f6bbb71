package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booksaloon/backend/internal/domain/entities"
)

func cfInteractions() []entities.Interaction {
	return []entities.Interaction{
		{UserID: "u1", SalonID: "s1", Rating: 5, BookingCount: 5},
		{UserID: "u2", SalonID: "s1", Rating: 5, BookingCount: 5},
		{UserID: "u2", SalonID: "s2", Rating: 4},
		{UserID: "u3", SalonID: "s3", Rating: 5, BookingCount: 5},
	}
}

func cfSalons() []entities.Salon {
	return []entities.Salon{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}}
}

func TestHybridRecommender_CollaborativeNeighbour(t *testing.T) {
	recs := NewHybridRecommender().Recommend("u1", cfSalons(), RecommendOptions{Interactions: cfInteractions()})

	require.Len(t, recs, 3)
	top := recs[0]
	assert.Equal(t, "s2", top.ID)
	assert.Equal(t, entities.RecommendationMethodHybrid, top.Method)
	require.NotNil(t, top.CollaborativeScore)
	assert.InDelta(t, 0.56, *top.CollaborativeScore, 1e-9)
	assert.InDelta(t, 0.456, top.Score, 1e-9)

	// s1 is already liked and nobody similar touched s3
	for _, rec := range recs[1:] {
		assert.Equal(t, entities.RecommendationMethodContentBased, rec.Method)
		assert.InDelta(t, 0.3, rec.Score, 1e-9)
		assert.InDelta(t, 0, *rec.CollaborativeScore, 1e-9)
	}
}

func TestHybridRecommender_HybridWeight(t *testing.T) {
	zero := 0.0
	recs := NewHybridRecommender().Recommend("u1", cfSalons(), RecommendOptions{
		Interactions: cfInteractions(),
		HybridWeight: &zero,
	})

	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.InDelta(t, 0.3, rec.Score, 1e-9)
	}
}

func TestHybridRecommender_EdgeCases(t *testing.T) {
	r := NewHybridRecommender()

	assert.Empty(t, r.Recommend("", cfSalons(), RecommendOptions{Interactions: cfInteractions()}))
	assert.Empty(t, r.Recommend("u1", nil, RecommendOptions{}))

	t.Run("unknown user gets content scores", func(t *testing.T) {
		recs := r.Recommend("u9", cfSalons(), RecommendOptions{Interactions: cfInteractions()})
		require.Len(t, recs, 3)
		for _, rec := range recs {
			assert.Equal(t, entities.RecommendationMethodContentBased, rec.Method)
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		recs := r.Recommend("u1", cfSalons(), RecommendOptions{Interactions: cfInteractions(), Limit: 1})
		require.Len(t, recs, 1)
		assert.Equal(t, "s2", recs[0].ID)
	})
}

func TestContentScore(t *testing.T) {
	salon := &entities.Salon{
		Rating:        4,
		StartingPrice: 800,
		Category:      "Hair Salon",
		Address:       "12 Main Road, Andheri West",
	}
	prefs := entities.UserPreferences{
		AvgSpend:            600,
		PreferredCategories: []string{"hair"},
		PreferredLocation:   "andheri",
	}

	assert.InDelta(t, 0.89, contentScore(salon, prefs), 1e-9)
	assert.InDelta(t, 0.3, contentScore(&entities.Salon{}, entities.UserPreferences{}), 1e-9)
	assert.InDelta(t, 0.24, contentScore(&entities.Salon{Rating: 4}, entities.UserPreferences{}), 1e-9)

	far := &entities.Salon{StartingPrice: 3000}
	assert.InDelta(t, 0, contentScore(far, entities.UserPreferences{AvgSpend: 500}), 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	items := []string{"a", "b"}
	a := map[string]float64{"a": 1}
	b := map[string]float64{"b": 1}

	assert.InDelta(t, 1, cosineSimilarity(a, a, items), 1e-9)
	assert.InDelta(t, 0, cosineSimilarity(a, b, items), 1e-9)
	assert.InDelta(t, 0, cosineSimilarity(a, nil, items), 1e-9)
}

func TestBuildInteractionMatrix(t *testing.T) {
	matrix := buildInteractionMatrix([]entities.Interaction{
		{UserID: "u1", SalonID: "s1", Rating: 2},
		{UserID: "u1", SalonID: "s1", Rating: 4, BookingCount: 12},
		{UserID: "", SalonID: "s1", Rating: 5},
	})

	require.Len(t, matrix, 1)
	// booking signal saturates at 5
	assert.InDelta(t, 4*0.7+5*0.3, matrix["u1"]["s1"], 1e-9)
}

func TestNeighbourCount(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 3: 1, 4: 2, 30: 10}
	for n, want := range cases {
		assert.Equal(t, want, NeighbourCount(n), "interactions=%d", n)
	}
}

func TestPopularityScore(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultPopularityWeights.Sum(), 1e-9)
	assert.InDelta(t, 0, PopularityScore(&entities.Salon{}), 1e-9)

	base := entities.Salon{Rating: 4.5, TotalReviews: 10, TotalBookings: 10}
	more := base
	more.TotalBookings = 40
	better := base
	better.Rating = 4.9
	reviewed := base
	reviewed.TotalReviews = 100

	assert.Greater(t, PopularityScore(&more), PopularityScore(&base))
	assert.Greater(t, PopularityScore(&better), PopularityScore(&base))
	assert.Greater(t, PopularityScore(&reviewed), PopularityScore(&base))

	saturated := entities.Salon{Rating: 5, TotalReviews: 1000, TotalBookings: 1000}
	assert.LessOrEqual(t, PopularityScore(&saturated), 1.0)
}

func TestHybridRecommender_Popular(t *testing.T) {
	salons := []entities.Salon{
		{ID: "quiet", Rating: 3, TotalReviews: 2},
		{ID: "busy", Rating: 4.8, TotalReviews: 120, TotalBookings: 300},
		{ID: "new"},
	}

	recs := NewHybridRecommender().Popular(salons, 2)

	require.Len(t, recs, 2)
	assert.Equal(t, "busy", recs[0].ID)
	assert.Equal(t, "quiet", recs[1].ID)
	assert.Equal(t, entities.RecommendationMethodPopularity, recs[0].Method)
	assert.Nil(t, recs[0].CollaborativeScore)
	assert.Empty(t, NewHybridRecommender().Popular(nil, 3))
}

func TestHybridRecommender_PopularProducts(t *testing.T) {
	products := []entities.Product{
		{ID: "gel", Rating: 4.5, TotalReviews: 3},
		{ID: "oil", Rating: 4.8, TotalReviews: 120, TotalSales: 300},
		{ID: "mask", Rating: 4.9},
		{ID: "wax", Rating: 4.5, TotalReviews: 3},
	}

	recs := NewHybridRecommender().PopularProducts(products, 3)

	require.Len(t, recs, 3)
	assert.Equal(t, "oil", recs[0].ID)
	// Ties keep catalog order
	assert.Equal(t, "gel", recs[1].ID)
	assert.Equal(t, "wax", recs[2].ID)
	assert.Equal(t, entities.RecommendationMethodPopularity, recs[0].Method)

	assert.Len(t, NewHybridRecommender().PopularProducts(products, 0), 4)
	assert.NotNil(t, NewHybridRecommender().PopularProducts(nil, 3))
}

func TestSignalPopularity_SameScoreForSalonsAndProducts(t *testing.T) {
	salon := entities.Salon{Rating: 4.6, TotalReviews: 40, TotalBookings: 25}
	product := entities.Product{Rating: 4.6, TotalReviews: 40, TotalSales: 25}

	assert.Equal(t, PopularityScore(&salon), SignalPopularity(product.PopularitySignals()))
}
