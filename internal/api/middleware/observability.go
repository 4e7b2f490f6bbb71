package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/booksaloon/backend/internal/infrastructure/observability"
)

// unmatchedRoute labels requests no registered pattern serves
const unmatchedRoute = "unmatched"

// RouteMatcher resolves the registered pattern that serves a request.
// *http.ServeMux implements it.
type RouteMatcher interface {
	Handler(r *http.Request) (h http.Handler, pattern string)
}

// ObservabilityMiddleware traces requests and records request metrics
// labelled by route pattern. The middleware runs outside the mux, where
// r.Pattern is not yet set, so the pattern is resolved through routes.
func ObservabilityMiddleware(metrics *observability.Metrics, routes RouteMatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeLabel(routes, r)

			ctx, span := observability.StartSpan(r.Context(), route)
			defer span.End()

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			)

			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rw, r.WithContext(ctx))

			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, time.Since(start))
			observability.SetSpanAttributes(span, attribute.Int("http.status_code", rw.statusCode))
		})
	}
}

// routeLabel never falls back to the raw path; ids in paths would make
// every salon its own time series.
func routeLabel(routes RouteMatcher, r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	if routes != nil {
		if _, pattern := routes.Handler(r); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
