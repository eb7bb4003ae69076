package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"oddscli/internal/config"
	apierrors "oddscli/internal/errors"
	"oddscli/internal/infrastructure"
	"oddscli/internal/middleware"
	"oddscli/internal/services"
)

// RouterDeps holds everything NewRouter wires together
type RouterDeps struct {
	Series  SeriesServiceInterface
	Health  *services.HealthService
	Tracer  trace.Tracer
	Metrics *infrastructure.Metrics
	// MetricsHandler serves /metrics; nil leaves the route unmounted.
	MetricsHandler http.Handler
	// RateLimit is requests per second across all clients; zero disables limiting.
	RateLimit    float64
	RateBurst    int
	IncludeStack bool
	Logger       *slog.Logger
}

// NewRouter builds the HTTP API.
// Middleware order: RequestID, RealIP, tracing, request logging with recovery, security headers.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	errorHandler := apierrors.NewErrorHandler(logger, deps.IncludeStack)

	observer := func(r *http.Request, status int, duration time.Duration) {
		deps.Metrics.RecordHTTPRequest(r.Context(), middleware.RoutePattern(r), status, duration)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	if deps.Tracer != nil {
		r.Use(middleware.Tracing(deps.Tracer))
	}
	r.Use(apierrors.NewErrorMiddleware(errorHandler, logger, observer).Handler)
	r.Use(middleware.SecurityHeaders)
	if deps.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(deps.RateLimit, deps.RateBurst, errorHandler, logger).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	health := NewHealthHandler(deps.Health, logger)
	r.Mount(config.HealthEndpoint, health.Routes())
	r.Get(config.VersionEndpoint, health.Version)
	r.Mount(config.SeriesEndpoint, NewSeriesHandler(deps.Series, logger, errorHandler).Routes())

	if deps.MetricsHandler != nil {
		r.Handle(config.MetricsPath, deps.MetricsHandler)
	}
	return r
}
