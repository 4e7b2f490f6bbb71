package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/booksaloon/backend/internal/api/handlers"
	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSalonHandler_SearchSalons(t *testing.T) {
	t.Run("passes query and options through", func(t *testing.T) {
		search := new(MockSearchService)
		handler := handlers.NewSalonHandler(new(MockSalonService), search)

		score := 0.8
		search.On("Search", mock.Anything, "hair cut", services.SearchOptions{
			Limit:     5,
			SortBy:    "price",
			SortOrder: "asc",
			MaxBudget: 500,
		}).Return([]entities.SalonResult{
			{Salon: entities.Salon{ID: "salon-1", Name: "Glow"}, RelevanceScore: &score},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/salons/search?query=hair+cut&limit=5&sortBy=price&sortOrder=asc&maxBudget=500", nil)
		w := httptest.NewRecorder()
		handler.SearchSalons(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeEnvelope(t, w)
		assert.True(t, body.Success)

		var results []entities.SalonResult
		require.NoError(t, json.Unmarshal(body.Data, &results))
		require.Len(t, results, 1)
		assert.Equal(t, "salon-1", results[0].ID)
		search.AssertExpectations(t)
	})

	t.Run("rejects a malformed limit", func(t *testing.T) {
		search := new(MockSearchService)
		handler := handlers.NewSalonHandler(new(MockSalonService), search)

		req := httptest.NewRequest(http.MethodGet, "/api/salons/search?query=x&limit=ten", nil)
		w := httptest.NewRecorder()
		handler.SearchSalons(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeEnvelope(t, w).Message, "limit")
		search.AssertNotCalled(t, "Search")
	})

	t.Run("hides internal failures", func(t *testing.T) {
		search := new(MockSearchService)
		handler := handlers.NewSalonHandler(new(MockSalonService), search)

		search.On("Search", mock.Anything, "x", mock.Anything).Return(nil, errors.New("pq: password authentication failed"))

		req := httptest.NewRequest(http.MethodGet, "/api/salons/search?query=x", nil)
		w := httptest.NewRecorder()
		handler.SearchSalons(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeEnvelope(t, w)
		assert.False(t, body.Success)
		assert.Equal(t, "internal server error", body.Message)
	})
}

func TestSalonHandler_ListSalons(t *testing.T) {
	salons := new(MockSalonService)
	handler := handlers.NewSalonHandler(salons, new(MockSearchService))

	salons.On("ListRanked", mock.Anything, services.RankPreferences{SortBy: "rating", SortOrder: "desc"}).
		Return([]entities.SalonResult{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/salons?sortBy=rating&sortOrder=desc", nil)
	w := httptest.NewRecorder()
	handler.ListSalons(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, w).Data))
}

func TestSalonHandler_ListSalons_PassesLocation(t *testing.T) {
	salons := new(MockSalonService)
	handler := handlers.NewSalonHandler(salons, new(MockSearchService))

	salons.On("ListRanked", mock.Anything, services.RankPreferences{MaxBudget: 800, PreferredLocation: "bandra"}).
		Return([]entities.SalonResult{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/salons?maxBudget=800&location=bandra", nil)
	w := httptest.NewRecorder()
	handler.ListSalons(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	salons.AssertExpectations(t)
}

func TestSalonHandler_RejectsNonFiniteBudget(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity", "1e400"} {
		t.Run("search "+raw, func(t *testing.T) {
			search := new(MockSearchService)
			handler := handlers.NewSalonHandler(new(MockSalonService), search)

			req := httptest.NewRequest(http.MethodGet, "/api/salons/search?query=hair&maxBudget="+raw, nil)
			w := httptest.NewRecorder()
			handler.SearchSalons(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeEnvelope(t, w)
			assert.False(t, body.Success)
			assert.Contains(t, body.Message, "maxBudget")
			search.AssertNotCalled(t, "Search")
		})

		t.Run("list "+raw, func(t *testing.T) {
			salons := new(MockSalonService)
			handler := handlers.NewSalonHandler(salons, new(MockSearchService))

			req := httptest.NewRequest(http.MethodGet, "/api/salons?maxBudget="+raw, nil)
			w := httptest.NewRecorder()
			handler.ListSalons(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeEnvelope(t, w).Message, "maxBudget")
			salons.AssertNotCalled(t, "ListRanked")
		})
	}
}

func TestSalonHandler_GetSalon(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		salons := new(MockSalonService)
		handler := handlers.NewSalonHandler(salons, new(MockSearchService))
		salons.On("GetByID", mock.Anything, "salon-1").Return(&entities.Salon{ID: "salon-1", Name: "Glow"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/salons/salon-1", nil)
		req.SetPathValue("id", "salon-1")
		w := httptest.NewRecorder()
		handler.GetSalon(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		salons := new(MockSalonService)
		handler := handlers.NewSalonHandler(salons, new(MockSearchService))
		salons.On("GetByID", mock.Anything, "nope").Return(nil, apperrors.NewNotFoundError("salon with id nope not found"))

		req := httptest.NewRequest(http.MethodGet, "/api/salons/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		handler.GetSalon(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "salon with id nope not found", decodeEnvelope(t, w).Message)
	})
}

func TestSalonHandler_SuggestSalons(t *testing.T) {
	salons := new(MockSalonService)
	handler := handlers.NewSalonHandler(salons, new(MockSearchService))
	salons.On("Suggest", mock.Anything, "glo", 0).Return([]repositories.SalonSuggestion{{ID: "salon-1", Name: "Glow"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/salons/suggest?q=glo", nil)
	w := httptest.NewRecorder()
	handler.SuggestSalons(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"salon-1","name":"Glow","rating":0}]`, string(decodeEnvelope(t, w).Data))
}

func TestSalonHandler_Mutations(t *testing.T) {
	t.Run("create validation error", func(t *testing.T) {
		salons := new(MockSalonService)
		handler := handlers.NewSalonHandler(salons, new(MockSearchService))
		salons.On("Create", mock.Anything, mock.Anything).Return(apperrors.NewValidationError("name is required"))

		req := httptest.NewRequest(http.MethodPost, "/api/salons", bytes.NewBufferString(`{"address":"Andheri"}`))
		w := httptest.NewRecorder()
		handler.CreateSalon(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create success", func(t *testing.T) {
		salons := new(MockSalonService)
		handler := handlers.NewSalonHandler(salons, new(MockSearchService))
		salons.On("Create", mock.Anything, mock.MatchedBy(func(s *entities.Salon) bool {
			return s.Name == "Glow" && len(s.Services) == 1
		})).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/salons",
			bytes.NewBufferString(`{"name":"Glow","address":"Andheri","services":[{"name":"Haircut","price":300}]}`))
		w := httptest.NewRecorder()
		handler.CreateSalon(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		salons.AssertExpectations(t)
	})

	t.Run("update takes the id from the path", func(t *testing.T) {
		salons := new(MockSalonService)
		handler := handlers.NewSalonHandler(salons, new(MockSearchService))
		salons.On("Update", mock.Anything, mock.MatchedBy(func(s *entities.Salon) bool {
			return s.ID == "salon-1"
		})).Return(nil)

		req := httptest.NewRequest(http.MethodPut, "/api/salons/salon-1", bytes.NewBufferString(`{"id":"other","name":"Glow","address":"Andheri"}`))
		req.SetPathValue("id", "salon-1")
		w := httptest.NewRecorder()
		handler.UpdateSalon(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		salons.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		salons := new(MockSalonService)
		handler := handlers.NewSalonHandler(salons, new(MockSearchService))
		salons.On("Delete", mock.Anything, "salon-1").Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/salons/salon-1", nil)
		req.SetPathValue("id", "salon-1")
		w := httptest.NewRecorder()
		handler.DeleteSalon(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeEnvelope(t, w).Success)
	})

	t.Run("invalid payload", func(t *testing.T) {
		handler := handlers.NewSalonHandler(new(MockSalonService), new(MockSearchService))

		req := httptest.NewRequest(http.MethodPost, "/api/salons", bytes.NewBufferString("invalid-json"))
		w := httptest.NewRecorder()
		handler.CreateSalon(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
