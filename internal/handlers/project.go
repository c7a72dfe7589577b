package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"cablecalc/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	service *services.ProjectService
	logr    *zap.Logger
}

func NewProjectHandler(svc *services.ProjectService, logr *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: svc, logr: logr}
}

type createProjectReq struct {
	Name string `json:"name"`
}

// CreateProject adds a named project
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "project name required"})
		return
	}

	project, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.logr.Error("failed to create project", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create project"})
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// ListProjects returns all projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context())
	if err != nil {
		h.logr.Error("failed to list projects", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list projects"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProject returns a single project by ID
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	project, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject removes a project and its segments
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logr.Warn("failed to delete project", zap.Error(err), zap.String("project_id", id.String()))
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearSegments drops every segment record from a project
func (h *ProjectHandler) ClearSegments(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := h.service.ClearSegments(r.Context(), id); err != nil {
		h.logr.Error("failed to clear segments", zap.Error(err), zap.String("project_id", id.String()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear segments"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// projectID parses the {projectID} route param, writing the 400 itself.
func projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id"})
		return uuid.Nil, false
	}
	return id, true
}
