package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/matchboard/internal/api/response"
)

// Pinger is anything that can report store reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the store answers
type HealthHandler struct {
	store   Pinger
	logger  *slog.Logger
	timeout time.Duration
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

// ServeHTTP handles GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
