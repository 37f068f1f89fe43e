package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tidytask/tidytask/internal/store"
)

// respondJSON sends a JSON success response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSONWarning sends a success response that carries a non-fatal
// warning, used when a mutation succeeded in memory but its snapshot
// write failed
func respondJSONWarning(w http.ResponseWriter, status int, data any, warning string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"warning":   warning,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSONError sends an error JSON response
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondServiceError maps core error kinds onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", verr.Error())
		return
	}
	var nferr *store.NotFoundError
	if errors.As(err, &nferr) {
		respondJSONError(w, http.StatusNotFound, "Not Found", nferr.Error())
		return
	}
	var cerr *store.CycleError
	if errors.As(err, &cerr) {
		respondJSONError(w, http.StatusConflict, "Conflict", cerr.Error())
		return
	}
	respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Operation failed")
}

// respondMutation handles the result of a mutating call: a persistence
// failure still reports the (live) result, flagged with a warning, per
// the store's no-rollback policy.
func respondMutation(w http.ResponseWriter, status int, data any, err error) {
	if err == nil {
		respondJSON(w, status, data)
		return
	}
	var perr *store.PersistenceError
	if errors.As(err, &perr) {
		respondJSONWarning(w, status, data, "changes applied but could not be saved to disk")
		return
	}
	respondServiceError(w, err)
}
