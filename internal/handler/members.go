package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/projectdesk/internal/service"
)

// MembersHandler loads and mutates a project's membership set
type MembersHandler struct {
	workspaces *service.WorkspaceService
	registry   *service.Registry
	logger     *slog.Logger
}

// NewMembersHandler creates a new members handler
func NewMembersHandler(workspaces *service.WorkspaceService, registry *service.Registry, logger *slog.Logger) *MembersHandler {
	return &MembersHandler{workspaces: workspaces, registry: registry, logger: logger}
}

// MemberListResponse carries a project's loaded membership set
type MemberListResponse struct {
	Members []MembershipDTO `json:"members"`
	Loaded  bool            `json:"loaded"`
	Message string          `json:"message,omitempty"`
}

// AddMemberRequest is the assignment payload
type AddMemberRequest struct {
	ProfileID string `json:"profileId"`
}

// List handles GET /api/projects/{id}/members
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := viewerWorkspace(w, r, h.registry)
	if !ok {
		return
	}
	projectID := r.PathValue("id")
	if projectID == "" {
		http.Error(w, "missing project id", http.StatusBadRequest)
		return
	}

	h.workspaces.LoadMembers(r.Context(), ws, projectID)
	h.respond(w, ws, projectID, http.StatusOK)
}

// Add handles POST /api/projects/{id}/members. A blank profile id is
// ignored without error.
func (h *MembersHandler) Add(w http.ResponseWriter, r *http.Request) {
	ws, ok := viewerWorkspace(w, r, h.registry)
	if !ok {
		return
	}
	projectID := r.PathValue("id")
	if projectID == "" {
		http.Error(w, "missing project id", http.StatusBadRequest)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	h.workspaces.AddMember(r.Context(), ws, projectID, req.ProfileID)
	h.respond(w, ws, projectID, http.StatusOK)
}

// Remove handles DELETE /api/projects/{id}/members/{memberId}
func (h *MembersHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ws, ok := viewerWorkspace(w, r, h.registry)
	if !ok {
		return
	}
	projectID := r.PathValue("id")
	memberID := r.PathValue("memberId")
	if projectID == "" || memberID == "" {
		http.Error(w, "missing project or member id", http.StatusBadRequest)
		return
	}

	h.workspaces.RemoveMember(r.Context(), ws, projectID, memberID)
	h.respond(w, ws, projectID, http.StatusOK)
}

func (h *MembersHandler) respond(w http.ResponseWriter, ws *service.Workspace, projectID string, status int) {
	members, loaded := ws.Members(projectID)
	writeJSON(w, h.logger, status, MemberListResponse{
		Members: toMembershipDTOs(members),
		Loaded:  loaded,
		Message: ws.Message(),
	})
}
