package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/projectdesk/internal/service"
)

// DirectoryHandler serves the organization's active profile directory
type DirectoryHandler struct {
	workspaces *service.WorkspaceService
	registry   *service.Registry
	logger     *slog.Logger
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(workspaces *service.WorkspaceService, registry *service.Registry, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{workspaces: workspaces, registry: registry, logger: logger}
}

// DirectoryResponse carries the active profile directory
type DirectoryResponse struct {
	Directory []ProfileDTO `json:"directory"`
	Message   string       `json:"message,omitempty"`
}

// ServeHTTP handles GET /api/directory. Resolution fetches the
// directory regardless of role, so this re-runs it like the project
// list does.
func (h *DirectoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, ok := viewerWorkspace(w, r, h.registry)
	if !ok {
		return
	}

	h.workspaces.Resolve(r.Context(), ws)

	writeJSON(w, h.logger, http.StatusOK, DirectoryResponse{
		Directory: toProfileDTOs(ws.Directory()),
		Message:   ws.Message(),
	})
}
