package handlers

import (
	"context"
	"net/http"

	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
)

// RecommendationService defines the recommendation pipeline used by the handler
type RecommendationService interface {
	Recommend(ctx context.Context, req services.RecommendationRequest) ([]entities.Recommendation, error)
}

// RecommendationHandler handles recommendation requests
type RecommendationHandler struct {
	service RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// GetRecommendations handles GET /api/recommendations
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	q := r.URL.Query()
	recs, err := h.service.Recommend(r.Context(), services.RecommendationRequest{
		UserID:            q.Get("userId"),
		Limit:             limit,
		PreferredLocation: q.Get("location"),
		PreferredCategory: q.Get("category"),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, recs)
}
