package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pocket-crm/analytics-api/internal/database"
)

// Pinger is a dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     *gorm.DB
	cache  Pinger
	logger *zap.Logger
}

// NewHealthHandler creates the health handler. cache may be nil when no report cache is configured.
func NewHealthHandler(db *gorm.DB, cache Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// Live is the liveness probe
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database reports record store reachability and pool usage
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(r.Context(), h.db)
	if err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}

// Ready checks every dependency the reports need
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		allHealthy = false
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	// the report cache is optional, so an unreachable cache degrades rather than fails readiness
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			h.logger.Warn("Report cache health check failed", zap.Error(err))
			checks["cache"] = map[string]interface{}{"status": "degraded", "error": err.Error()}
		} else {
			checks["cache"] = map[string]interface{}{"status": "healthy"}
		}
	}

	if !allHealthy {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"checks": checks,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	})
}
