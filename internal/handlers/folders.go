package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/services/tasks"
)

// FolderHandler handles folder hierarchy requests
type FolderHandler struct {
	svc *tasks.Service
	log *zap.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(svc *tasks.Service, log *zap.Logger) *FolderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FolderHandler{svc: svc, log: log}
}

// RegisterRoutes registers folder routes on the given router. The router
// should already carry the /folders prefix.
func (h *FolderHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListFolders).Methods("GET")
	r.HandleFunc("", h.CreateFolder).Methods("POST")
	r.HandleFunc("/{id}", h.GetFolder).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateFolder).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteFolder).Methods("DELETE")
	r.HandleFunc("/{id}/move", h.MoveFolder).Methods("POST")
}

// CreateFolderRequest is the create folder payload
type CreateFolderRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
	Color    string     `json:"color,omitempty"`
}

// MoveFolderRequest is the move folder payload; a nil parent means the
// root folder
type MoveFolderRequest struct {
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}

// DeleteFolderResponse reports what a cascading delete removed
type DeleteFolderResponse struct {
	TodosRemoved   int `json:"todosRemoved"`
	FoldersRemoved int `json:"foldersRemoved"`
}

// ListFolders returns every folder
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListFolders())
}

// CreateFolder creates a folder under the given parent (default root)
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	parentID := uuid.Nil
	if req.ParentID != nil {
		parentID = *req.ParentID
	}
	folder, err := h.svc.CreateFolder(req.Name, parentID, req.Color)
	respondMutation(w, http.StatusCreated, folder, err)
}

// GetFolder retrieves a folder by ID
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	folder, err := h.svc.Folders().Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, folder)
}

// UpdateFolder renames or recolors a folder
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var patch models.FolderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	folder, err := h.svc.RenameFolder(id, patch)
	respondMutation(w, http.StatusOK, folder, err)
}

// MoveFolder reparents a folder; a move that would create a cycle is
// rejected with 409
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req MoveFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	parentID := uuid.Nil
	if req.ParentID != nil {
		parentID = *req.ParentID
	}
	if err := h.svc.MoveFolder(id, parentID); err != nil {
		respondServiceError(w, err)
		return
	}
	folder, err := h.svc.Folders().Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, folder)
}

// DeleteFolder removes a folder, its descendants and their todos
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	todosRemoved, foldersRemoved, err := h.svc.DeleteFolder(id)
	respondMutation(w, http.StatusOK, DeleteFolderResponse{
		TodosRemoved:   todosRemoved,
		FoldersRemoved: foldersRemoved,
	}, err)
}
