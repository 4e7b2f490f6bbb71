package search

import (
	"strings"

	"github.com/booksaloon/backend/internal/domain/entities"
)

// MaxIndexedServices caps the service names stored per salon document
const MaxIndexedServices = 100

// salonDocument builds the suggestion index document for a salon
func salonDocument(salon *entities.Salon) map[string]interface{} {
	return map[string]interface{}{
		"id":             salon.ID,
		"name":           strings.TrimSpace(salon.Name),
		"category":       salon.Category,
		"address":        salon.Address,
		"services":       serviceTerms(salon),
		"rating":         salon.Rating,
		"total_bookings": salon.TotalBookings,
	}
}

// serviceTerms returns the distinct lowercased service names in catalog order
func serviceTerms(salon *entities.Salon) []string {
	seen := make(map[string]struct{}, len(salon.Services))
	terms := make([]string, 0, len(salon.Services))
	for _, name := range salon.ServiceNames() {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		terms = append(terms, name)
		if len(terms) == MaxIndexedServices {
			break
		}
	}
	return terms
}
