package entities

import (
	"time"
)

const (
	// DefaultOpeningHour is used when a salon has no opening hour configured.
	DefaultOpeningHour = 9
	// DefaultClosingHour is used when a salon has no closing hour configured.
	DefaultClosingHour = 21
)

// Salon represents a service provider listed in the marketplace
type Salon struct {
	ID             string             `json:"id" db:"id"`
	OwnerID        string             `json:"owner_id,omitempty" db:"owner_id"`
	Name           string             `json:"name" db:"name"`
	Category       string             `json:"category,omitempty" db:"category"`
	Address        string             `json:"address" db:"address"`
	Description    string             `json:"description,omitempty" db:"description"`
	ImageURL       string             `json:"img,omitempty" db:"img"`
	Services       []Service          `json:"services" db:"-"`
	Rating         float64            `json:"rating" db:"rating"`
	StartingPrice  float64            `json:"starting_price" db:"starting_price"`
	TotalReviews   int                `json:"total_reviews" db:"total_reviews"`
	TotalBookings  int                `json:"total_bookings" db:"total_bookings"`
	DistanceKm     *float64           `json:"distance_km,omitempty" db:"-"`
	AvailableSlots *int               `json:"available_slots,omitempty" db:"available_slots"`
	IsFullyBooked  bool               `json:"is_fully_booked" db:"is_fully_booked"`
	OpeningHour    int                `json:"opening_hour,omitempty" db:"opening_hour"`
	ClosingHour    int                `json:"closing_hour,omitempty" db:"closing_hour"`
	LastActive     *time.Time         `json:"last_active,omitempty" db:"last_active"`
	Attributes     map[string]float64 `json:"attributes,omitempty" db:"-"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}

// Service is a priced offering of a salon
type Service struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ServiceNames returns the names of all services in listing order
func (s *Salon) ServiceNames() []string {
	names := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		names = append(names, svc.Name)
	}
	return names
}

// OperatingHours returns the opening and closing hour, falling back to the
// marketplace defaults when unset or inconsistent.
func (s *Salon) OperatingHours() (int, int) {
	return s.OperatingHoursOr(DefaultOpeningHour, DefaultClosingHour)
}

// OperatingHoursOr is OperatingHours with caller supplied defaults
func (s *Salon) OperatingHoursOr(defaultOpen, defaultClose int) (int, int) {
	open, closing := s.OpeningHour, s.ClosingHour
	if open <= 0 || open > 23 {
		open = defaultOpen
	}
	if closing <= 0 || closing > 24 {
		closing = defaultClose
	}
	if closing <= open {
		return defaultOpen, defaultClose
	}
	return open, closing
}

// LastSeen returns the most recent of LastActive, UpdatedAt and CreatedAt.
// The boolean is false when none of them is known.
func (s *Salon) LastSeen() (time.Time, bool) {
	var latest time.Time
	if s.LastActive != nil && !s.LastActive.IsZero() {
		latest = *s.LastActive
	}
	if s.UpdatedAt.After(latest) {
		latest = s.UpdatedAt
	}
	if s.CreatedAt.After(latest) {
		latest = s.CreatedAt
	}
	return latest, !latest.IsZero()
}

// NumericField resolves a sortable numeric field by name. Both the JSON
// names and their camelCase spellings are accepted; unknown fields fall back
// to Attributes and finally to 0.
func (s *Salon) NumericField(name string) float64 {
	switch name {
	case "rating":
		return s.Rating
	case "price", "startingPrice", "starting_price":
		return s.StartingPrice
	case "totalReviews", "total_reviews", "reviewCount", "review_count":
		return float64(s.TotalReviews)
	case "totalBookings", "total_bookings", "bookingCount", "booking_count":
		return float64(s.TotalBookings)
	case "distance", "distanceKm", "distance_km":
		if s.DistanceKm != nil {
			return *s.DistanceKm
		}
		return 0
	case "availableSlots", "available_slots":
		if s.AvailableSlots != nil {
			return float64(*s.AvailableSlots)
		}
		return 0
	}
	if v, ok := s.Attributes[name]; ok {
		return v
	}
	return 0
}
