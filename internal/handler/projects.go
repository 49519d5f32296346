package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/projectdesk/internal/service"
)

// ProjectsHandler serves the viewer's visible project list
type ProjectsHandler struct {
	workspaces *service.WorkspaceService
	registry   *service.Registry
	logger     *slog.Logger
}

// NewProjectsHandler creates a new projects handler
func NewProjectsHandler(workspaces *service.WorkspaceService, registry *service.Registry, logger *slog.Logger) *ProjectsHandler {
	return &ProjectsHandler{workspaces: workspaces, registry: registry, logger: logger}
}

// ProjectListResponse carries the visible projects plus any store
// errors accumulated during resolution
type ProjectListResponse struct {
	Projects []ProjectDTO `json:"projects"`
	Message  string       `json:"message,omitempty"`
}

// ServeHTTP handles GET /api/projects
func (h *ProjectsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, ok := viewerWorkspace(w, r, h.registry)
	if !ok {
		return
	}

	h.workspaces.Resolve(r.Context(), ws)

	writeJSON(w, h.logger, http.StatusOK, ProjectListResponse{
		Projects: toProjectDTOs(ws.Projects()),
		Message:  ws.Message(),
	})
}

// CreateProjectHandler creates projects for privileged viewers
type CreateProjectHandler struct {
	workspaces *service.WorkspaceService
	registry   *service.Registry
	logger     *slog.Logger
}

// NewCreateProjectHandler creates a new project creation handler
func NewCreateProjectHandler(workspaces *service.WorkspaceService, registry *service.Registry, logger *slog.Logger) *CreateProjectHandler {
	return &CreateProjectHandler{workspaces: workspaces, registry: registry, logger: logger}
}

// CreateProjectRequest is the creation payload
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// ServeHTTP handles POST /api/projects. A whitespace-only name is a
// silent no-op; a non-privileged caller gets the rejection message in
// the response body.
func (h *CreateProjectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, ok := viewerWorkspace(w, r, h.registry)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	created := h.workspaces.CreateProject(r.Context(), ws, req.Name)

	status := http.StatusOK
	if created != nil {
		status = http.StatusCreated
	}
	writeJSON(w, h.logger, status, ProjectListResponse{
		Projects: toProjectDTOs(ws.Projects()),
		Message:  ws.Message(),
	})
}
