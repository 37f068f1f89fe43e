package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/services/tasks"
	"github.com/tidytask/tidytask/internal/validation"
	"github.com/tidytask/tidytask/internal/window"
)

const (
	// DefaultPageSize is the default page size for listing todos
	DefaultPageSize = 100
	// MaxPageSize is the maximum page size for listing todos
	MaxPageSize = 500
)

// TodoHandler handles todo-related requests
type TodoHandler struct {
	svc *tasks.Service
	log *zap.Logger
	win window.Config
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(svc *tasks.Service, log *zap.Logger, win window.Config) *TodoHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TodoHandler{svc: svc, log: log, win: win}
}

// RegisterRoutes registers todo routes on the given router. The router
// should already carry the /todos prefix. Fixed paths register before the
// {id} routes so mux matches them first.
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTodos).Methods("GET")
	r.HandleFunc("", h.CreateTodo).Methods("POST")
	r.HandleFunc("", h.ClearAll).Methods("DELETE")
	r.HandleFunc("/window", h.WindowTodos).Methods("GET")
	r.HandleFunc("/completed", h.ClearCompleted).Methods("DELETE")
	r.HandleFunc("/complete-all", h.CompleteAll).Methods("POST")
	r.HandleFunc("/activate-all", h.ActivateAll).Methods("POST")
	r.HandleFunc("/{id}", h.GetTodo).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTodo).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTodo).Methods("DELETE")
	r.HandleFunc("/{id}/toggle", h.ToggleTodo).Methods("POST")
}

// ListTodosResponse is the paginated listing payload
type ListTodosResponse struct {
	Todos  []*models.Todo `json:"todos"`
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// WindowTodosResponse is the windowed listing payload: only the rows in
// the computed index range are materialized
type WindowTodosResponse struct {
	Todos []*models.Todo `json:"todos"`
	Range window.Range   `json:"range"`
	Total int            `json:"total"`
}

// ListTodos lists todos with filtering, sorting and pagination
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	field, dir, err := parseSort(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	offset := parseIntParam(r, "offset", 0)
	limit := parseIntParam(r, "limit", DefaultPageSize)
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	total := len(h.svc.FilterTodos(filter))
	todos := h.svc.ListTodos(filter, field, dir, offset, limit)

	respondJSON(w, http.StatusOK, ListTodosResponse{
		Todos:  todos,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// WindowTodos returns only the slice of the filtered, sorted list that a
// viewport needs, plus the index range it covers
func (h *TodoHandler) WindowTodos(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	field, dir, err := parseSort(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	cfg := h.win
	if v := parseIntParam(r, "itemHeight", 0); v > 0 {
		cfg.ItemHeight = v
	}
	viewport := parseIntParam(r, "viewport", 0)
	scroll := parseIntParam(r, "scroll", 0)

	rng, todos := h.svc.WindowTodos(filter, field, dir, cfg, viewport, scroll)
	respondJSON(w, http.StatusOK, WindowTodosResponse{
		Todos: todos,
		Range: rng,
		Total: len(h.svc.FilterTodos(filter)),
	})
}

// CreateTodo creates a new todo
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var in tasks.CreateTodoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	todo, err := h.svc.CreateTodo(in)
	respondMutation(w, http.StatusCreated, todo, err)
}

// GetTodo retrieves a todo by ID
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	todo, err := h.svc.GetTodo(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, todo)
}

// UpdateTodo applies a partial update to a todo
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var patch models.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	todo, err := h.svc.UpdateTodo(id, patch)
	respondMutation(w, http.StatusOK, todo, err)
}

// ToggleTodo flips a todo's completed flag
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	todo, err := h.svc.ToggleTodo(id)
	respondMutation(w, http.StatusOK, todo, err)
}

// DeleteTodo removes a todo
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTodo(id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkResponse struct {
	Affected int `json:"affected"`
}

// ClearCompleted removes every completed todo
func (h *TodoHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearCompleted()
	respondMutation(w, http.StatusOK, bulkResponse{Affected: n}, err)
}

// ClearAll removes every todo
func (h *TodoHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearAll()
	respondMutation(w, http.StatusOK, bulkResponse{Affected: n}, err)
}

// CompleteAll marks every active todo as completed
func (h *TodoHandler) CompleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkAllCompleted()
	respondMutation(w, http.StatusOK, bulkResponse{Affected: n}, err)
}

// ActivateAll marks every completed todo as active
func (h *TodoHandler) ActivateAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkAllActive()
	respondMutation(w, http.StatusOK, bulkResponse{Affected: n}, err)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func parseIntParam(r *http.Request, name string, defaultValue int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

// parseFilter builds FilterOptions from query parameters: status,
// priority, tag (repeatable), search, from, to. Dates accept YYYY-MM-DD
// or RFC 3339; a date-only "to" covers the whole named day so the range
// stays inclusive at day granularity.
func parseFilter(r *http.Request) (models.FilterOptions, error) {
	var f models.FilterOptions
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		if err := validation.ValidateStatusFilter(status); err != nil {
			return f, err
		}
		f.Status = models.StatusFilter(status)
	}
	if priority := q.Get("priority"); priority != "" {
		if err := validation.ValidatePriority(priority); err != nil {
			return f, err
		}
		f.Priority = models.Priority(priority)
	}
	f.Tags = q["tag"]
	f.Search = q.Get("search")

	if from := q.Get("from"); from != "" {
		t, _, err := parseDateParam(from)
		if err != nil {
			return f, err
		}
		f.CreatedFrom = &t
	}
	if to := q.Get("to"); to != "" {
		t, dateOnly, err := parseDateParam(to)
		if err != nil {
			return f, err
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.CreatedTo = &t
	}
	return f, nil
}

func parseSort(r *http.Request) (models.SortField, models.SortDirection, error) {
	q := r.URL.Query()
	field := q.Get("sort")
	if field != "" {
		if err := validation.ValidateSortField(field); err != nil {
			return "", "", err
		}
	}
	dir := q.Get("direction")
	if dir != "" {
		if err := validation.ValidateSortDirection(dir); err != nil {
			return "", "", err
		}
	} else {
		dir = string(models.SortAsc)
	}
	return models.SortField(field), models.SortDirection(dir), nil
}

// parseDateParam parses a date query value, reporting whether it carried
// only a calendar day (no time of day)
func parseDateParam(value string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q (use YYYY-MM-DD or RFC 3339)", value)
	}
	return t, false, nil
}
