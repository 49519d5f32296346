package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/projectdesk/internal/service"
)

// CandidatesHandler serves the assignment picker for a project
type CandidatesHandler struct {
	workspaces *service.WorkspaceService
	registry   *service.Registry
	logger     *slog.Logger
}

// NewCandidatesHandler creates a new candidates handler
func NewCandidatesHandler(workspaces *service.WorkspaceService, registry *service.Registry, logger *slog.Logger) *CandidatesHandler {
	return &CandidatesHandler{workspaces: workspaces, registry: registry, logger: logger}
}

// CandidateListResponse carries the profiles eligible for assignment
type CandidateListResponse struct {
	Candidates []ProfileDTO `json:"candidates"`
}

// ServeHTTP handles GET /api/projects/{id}/candidates. The optional
// focus query parameter narrows the list to a single profile, as when
// deep-linking to "manage access for user X".
func (h *CandidatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, ok := viewerWorkspace(w, r, h.registry)
	if !ok {
		return
	}
	projectID := r.PathValue("id")
	if projectID == "" {
		http.Error(w, "missing project id", http.StatusBadRequest)
		return
	}

	focus := r.URL.Query().Get("focus")
	candidates := h.workspaces.Candidates(ws, projectID, focus)

	writeJSON(w, h.logger, http.StatusOK, CandidateListResponse{
		Candidates: toProfileDTOs(candidates),
	})
}
