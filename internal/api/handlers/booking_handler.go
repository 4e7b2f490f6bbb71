package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
)

// BookingService defines the booking operations used by the handler
type BookingService interface {
	CheckAvailability(ctx context.Context, salonID, date, t string) (*entities.AvailabilityResult, error)
	CreateBooking(ctx context.Context, req services.CreateBookingRequest) (*entities.AvailabilityResult, error)
	UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error)
	GetSalonBookings(ctx context.Context, salonID string) ([]entities.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]entities.Booking, error)
}

// BookingHandler handles booking and availability requests
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// CheckAvailability handles GET /api/salons/{id}/availability
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.CheckAvailability(r.Context(), r.PathValue("id"), q.Get("date"), q.Get("time"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, result)
}

// CreateBooking handles POST /api/bookings. A taken slot answers 409 with
// the suggested alternatives in the body.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.CreateBooking(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if !result.Available {
		respondWithJSON(w, http.StatusConflict, envelope{
			Success: false,
			Data:    result,
			Message: result.Message,
		})
		return
	}
	respondWithJSON(w, http.StatusCreated, envelope{
		Success: true,
		Data:    result,
		Message: result.Message,
	})
}

type statusRequest struct {
	Status entities.BookingStatus `json:"status"`
}

// UpdateStatus handles PUT /api/bookings/{id}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, booking)
}

// GetSalonBookings handles GET /api/salons/{id}/bookings
func (h *BookingHandler) GetSalonBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetSalonBookings(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, bookings)
}

// GetUserBookings handles GET /api/users/{userId}/bookings
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetUserBookings(r.Context(), r.PathValue("userId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, bookings)
}
