package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/booksaloon/backend/internal/infrastructure/observability"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

// envelope is the body of every API response
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent; the client sees a truncated body.
		log.Error().Err(err).Int("status", statusCode).Msg("failed to encode response")
	}
}

func respondWithData(w http.ResponseWriter, statusCode int, data interface{}) {
	respondWithJSON(w, statusCode, envelope{Success: true, Data: data})
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, envelope{Success: false, Message: message})
}

// respondWithAppError maps an error to its HTTP status. Internal details
// are logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusForError(appErr.Type)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		message := "internal server error"
		if appErr.Type == apperrors.ErrorTypeExternal {
			message = "upstream service unavailable"
		}
		respondWithError(w, status, message)
		return
	}
	respondWithError(w, status, appErr.Message)
}

func statusForError(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// queryInt parses an optional non-negative integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError(name + " must be a non-negative integer")
	}
	return v, nil
}

// queryFloat parses an optional finite, non-negative number query parameter.
// ParseFloat accepts "NaN" and "Inf", which would poison every comparison
// downstream.
func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, apperrors.NewValidationError(name + " must be a non-negative number")
	}
	return v, nil
}
