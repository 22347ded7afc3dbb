package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/matchboard/internal/api/handler"
	"github.com/mcoot/matchboard/internal/api/middleware"
	"github.com/mcoot/matchboard/internal/metrics"
	"github.com/mcoot/matchboard/internal/services/match"
	"github.com/mcoot/matchboard/internal/services/ranking"
	"github.com/mcoot/matchboard/internal/services/simulation"
	"github.com/mcoot/matchboard/internal/services/users"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	UserService       *users.Service
	RankingService    *ranking.Service
	MatchService      *match.Service
	SimulationService *simulation.Service
	Store             handler.Pinger

	// Gatherer backs /metrics (optional)
	Gatherer prometheus.Gatherer
	// RateLimiter guards the action endpoint (optional)
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	actionHandler := handler.NewActionHandler(
		cfg.UserService,
		cfg.RankingService,
		cfg.MatchService,
		cfg.SimulationService,
		cfg.Logger,
	)
	healthHandler := handler.NewHealthHandler(cfg.Store, cfg.Logger)

	// Common middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Operational routes
	r.Handle("/health", healthHandler).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(cfg.Gatherer)).Methods(http.MethodGet)
	}

	// Action endpoint answers every method; unsupported ones get an error envelope
	actions := r.NewRoute().Subrouter()
	if cfg.RateLimiter != nil {
		actions.Use(cfg.RateLimiter.Middleware)
	}
	actions.Use(middleware.OptionalAuth(cfg.UserService))
	actions.Handle("/", actionHandler)
	actions.Handle("/api", actionHandler)
	actions.Handle("/api/", actionHandler)

	return r
}
