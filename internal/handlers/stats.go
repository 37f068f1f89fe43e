package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tidytask/tidytask/internal/services/tasks"
)

// StatsHandler serves the derived statistics views
type StatsHandler struct {
	svc *tasks.Service
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(svc *tasks.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// RegisterRoutes registers stats routes on the given router. The router
// should already carry the /stats prefix.
func (h *StatsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetStats).Methods("GET")
	r.HandleFunc("/tags", h.GetTagStats).Methods("GET")
	r.HandleFunc("/priorities", h.GetPriorityStats).Methods("GET")
}

// GetStats returns the TodoStats summary
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Stats())
}

// GetTagStats returns the tag-frequency map
func (h *StatsHandler) GetTagStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.TagStats())
}

// GetPriorityStats returns the priority-frequency map
func (h *StatsHandler) GetPriorityStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.PriorityStats())
}
