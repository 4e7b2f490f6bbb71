package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
)

// SalonService defines the catalog operations used by the handler
type SalonService interface {
	Create(ctx context.Context, salon *entities.Salon) error
	GetByID(ctx context.Context, id string) (*entities.Salon, error)
	Update(ctx context.Context, salon *entities.Salon) error
	Delete(ctx context.Context, id string) error
	ListRanked(ctx context.Context, prefs services.RankPreferences) ([]entities.SalonResult, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]repositories.SalonSuggestion, error)
}

// SearchService defines the search pipeline used by the handler
type SearchService interface {
	Search(ctx context.Context, query string, opts services.SearchOptions) ([]entities.SalonResult, error)
}

// SalonHandler handles salon catalog and search requests
type SalonHandler struct {
	salons SalonService
	search SearchService
}

// NewSalonHandler creates a new salon handler
func NewSalonHandler(salons SalonService, search SearchService) *SalonHandler {
	return &SalonHandler{
		salons: salons,
		search: search,
	}
}

// ListSalons handles GET /api/salons
func (h *SalonHandler) ListSalons(w http.ResponseWriter, r *http.Request) {
	maxBudget, err := queryFloat(r, "maxBudget")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	q := r.URL.Query()
	results, err := h.salons.ListRanked(r.Context(), services.RankPreferences{
		MaxBudget:         maxBudget,
		SortBy:            q.Get("sortBy"),
		SortOrder:         q.Get("sortOrder"),
		PreferredLocation: q.Get("location"),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, results)
}

// SearchSalons handles GET /api/salons/search
func (h *SalonHandler) SearchSalons(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	maxBudget, err := queryFloat(r, "maxBudget")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	q := r.URL.Query()
	results, err := h.search.Search(r.Context(), q.Get("query"), services.SearchOptions{
		Limit:     limit,
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		MaxBudget: maxBudget,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, results)
}

// SuggestSalons handles GET /api/salons/suggest
func (h *SalonHandler) SuggestSalons(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	suggestions, err := h.salons.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, suggestions)
}

// GetSalon handles GET /api/salons/{id}
func (h *SalonHandler) GetSalon(w http.ResponseWriter, r *http.Request) {
	salonID := r.PathValue("id")
	if salonID == "" {
		respondWithError(w, http.StatusBadRequest, "salon ID is required")
		return
	}

	salon, err := h.salons.GetByID(r.Context(), salonID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, salon)
}

// CreateSalon handles POST /api/salons
func (h *SalonHandler) CreateSalon(w http.ResponseWriter, r *http.Request) {
	var salon entities.Salon
	if err := json.NewDecoder(r.Body).Decode(&salon); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.salons.Create(r.Context(), &salon); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, salon)
}

// UpdateSalon handles PUT /api/salons/{id}
func (h *SalonHandler) UpdateSalon(w http.ResponseWriter, r *http.Request) {
	var salon entities.Salon
	if err := json.NewDecoder(r.Body).Decode(&salon); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	salon.ID = r.PathValue("id")

	if err := h.salons.Update(r.Context(), &salon); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, salon)
}

// DeleteSalon handles DELETE /api/salons/{id}
func (h *SalonHandler) DeleteSalon(w http.ResponseWriter, r *http.Request) {
	if err := h.salons.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{Success: true, Message: "salon deleted"})
}
