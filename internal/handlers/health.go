package handlers

import (
	"net/http"
	"time"
)

// Pinger checks that the snapshot database is reachable
type Pinger interface {
	Ping() error
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthChecker reports process and storage health
type HealthChecker struct {
	storage Pinger
}

// NewHealthChecker creates a health checker; storage may be nil when no
// durable backend is configured
func NewHealthChecker(storage Pinger) *HealthChecker {
	return &HealthChecker{storage: storage}
}

// HealthCheck reports basic liveness, or storage status too with
// ?mode=extended
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = map[string]string{}
		if h.storage == nil {
			response.Checks["storage"] = "not configured"
		} else if err := h.storage.Ping(); err != nil {
			response.Checks["storage"] = "unhealthy"
			response.Status = "unhealthy"
		} else {
			response.Checks["storage"] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, response)
}
