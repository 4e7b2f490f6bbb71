package routes

import (
	"net/http"

	"github.com/booksaloon/backend/internal/api/handlers"
	"github.com/booksaloon/backend/internal/api/middleware"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	salonHandler          *handlers.SalonHandler
	bookingHandler        *handlers.BookingHandler
	recommendationHandler *handlers.RecommendationHandler
	healthHandler         *handlers.HealthHandler
	productHandler        *handlers.ProductHandler
	sseHandler            *handlers.SSEHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	salonHandler *handlers.SalonHandler,
	bookingHandler *handlers.BookingHandler,
	recommendationHandler *handlers.RecommendationHandler,
	healthHandler *handlers.HealthHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		salonHandler:          salonHandler,
		bookingHandler:        bookingHandler,
		recommendationHandler: recommendationHandler,
		healthHandler:         healthHandler,
		cacheMiddleware:       cacheMiddleware,
		metrics:               metrics,
		allowedOrigins:        allowedOrigins,
	}
}

// WithProductHandler enables the product catalog routes
func (r *Router) WithProductHandler(h *handlers.ProductHandler) *Router {
	r.productHandler = h
	return r
}

// WithSSEHandler enables live salon event streams
func (r *Router) WithSSEHandler(h *handlers.SSEHandler) *Router {
	r.sseHandler = h
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Salon catalog and search
	r.mux.HandleFunc("GET /api/salons", r.salonHandler.ListSalons)
	r.mux.HandleFunc("GET /api/salons/search", r.salonHandler.SearchSalons)
	r.mux.HandleFunc("GET /api/salons/suggest", r.salonHandler.SuggestSalons)
	r.mux.HandleFunc("GET /api/salons/{id}", r.salonHandler.GetSalon)
	r.mux.HandleFunc("POST /api/salons", r.salonHandler.CreateSalon)
	r.mux.HandleFunc("PUT /api/salons/{id}", r.salonHandler.UpdateSalon)
	r.mux.HandleFunc("DELETE /api/salons/{id}", r.salonHandler.DeleteSalon)

	// Bookings
	r.mux.HandleFunc("GET /api/salons/{id}/availability", r.bookingHandler.CheckAvailability)
	r.mux.HandleFunc("GET /api/salons/{id}/bookings", r.bookingHandler.GetSalonBookings)
	r.mux.HandleFunc("GET /api/users/{userId}/bookings", r.bookingHandler.GetUserBookings)
	r.mux.HandleFunc("POST /api/bookings", r.bookingHandler.CreateBooking)
	r.mux.HandleFunc("PUT /api/bookings/{id}/status", r.bookingHandler.UpdateStatus)

	// Recommendations
	r.mux.HandleFunc("GET /api/recommendations", r.recommendationHandler.GetRecommendations)

	if r.productHandler != nil {
		r.mux.HandleFunc("GET /api/products", r.productHandler.ListProducts)
		r.mux.HandleFunc("GET /api/products/recommended", r.productHandler.GetRecommended)
		r.mux.HandleFunc("GET /api/products/{id}", r.productHandler.GetProduct)
		r.mux.HandleFunc("POST /api/products", r.productHandler.CreateProduct)
		r.mux.HandleFunc("PUT /api/products/{id}", r.productHandler.UpdateProduct)
		r.mux.HandleFunc("DELETE /api/products/{id}", r.productHandler.DeleteProduct)
	}

	// Live booking events
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/salons/{id}/events", r.sseHandler.StreamSalonEvents)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics, r.mux)(handler)
	}

	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
