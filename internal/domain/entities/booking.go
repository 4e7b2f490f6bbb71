package entities

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsValid checks if the status is one of the defined constants
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking represents a reservation of one hour-granular slot at a salon.
// Date is a calendar date (YYYY-MM-DD) and Time a time of day ("HH:MM").
type Booking struct {
	ID              string        `json:"id" db:"id"`
	UserID          string        `json:"user_id" db:"user_id"`
	SalonID         string        `json:"salon_id" db:"salon_id"`
	Service         string        `json:"service" db:"service"`
	Price           float64       `json:"price" db:"price"`
	Date            string        `json:"date" db:"date"`
	Time            string        `json:"time" db:"time"`
	Status          BookingStatus `json:"status" db:"status"`
	ServiceDuration float64       `json:"service_duration,omitempty" db:"service_duration"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// Occupies reports whether the booking holds its slot. Cancelled bookings
// never block a slot.
func (b *Booking) Occupies() bool {
	return b.Status != BookingStatusCancelled
}

// ActiveBookingsOn returns the non-cancelled bookings for the given date
func ActiveBookingsOn(bookings []Booking, date string) []Booking {
	active := make([]Booking, 0, len(bookings))
	for i := range bookings {
		if bookings[i].Date == date && bookings[i].Occupies() {
			active = append(active, bookings[i])
		}
	}
	return active
}
