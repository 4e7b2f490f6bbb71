package entities

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventType represents the type of booking event
type BookingEventType string

const (
	BookingEventTypeCreated       BookingEventType = "booking.created"
	BookingEventTypeStatusChanged BookingEventType = "booking.status_changed"
)

// BookingEvent represents a real-time update about a booking at a salon
type BookingEvent struct {
	ID        string           `json:"id"`
	Type      BookingEventType `json:"type"`
	SalonID   string           `json:"salon_id"`
	BookingID string           `json:"booking_id"`
	Date      string           `json:"date"`
	Time      string           `json:"time"`
	Status    BookingStatus    `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewBookingEvent creates a new booking event from the current booking state
func NewBookingEvent(eventType BookingEventType, booking *Booking) *BookingEvent {
	return &BookingEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		SalonID:   booking.SalonID,
		BookingID: booking.ID,
		Date:      booking.Date,
		Time:      booking.Time,
		Status:    booking.Status,
		Timestamp: time.Now().UTC(),
	}
}
