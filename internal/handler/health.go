package handler

import (
	"net/http"

	"github.com/geowise/station-healthcheck/internal/monitor"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping() error
}

// HealthHandler handles health check and metrics endpoints.
type HealthHandler struct {
	db      Pinger // nil when no station source is configured
	metrics *monitor.Metrics
	alarm   *monitor.Alarm
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, metrics *monitor.Metrics, alarm *monitor.Alarm) *HealthHandler {
	return &HealthHandler{db: db, metrics: metrics, alarm: alarm}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if h.db == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "not configured",
		})
		return
	}

	if err := h.db.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

// Metrics handles GET /v1/metrics
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": h.metrics.Snapshot(),
		"alarm":   h.alarm.Report(),
	})
}
