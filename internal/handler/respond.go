package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/security/middleware"
	"github.com/yourorg/projectdesk/internal/service"
)

// ProjectDTO is the wire shape of a project
type ProjectDTO struct {
	ID       string  `json:"id"`
	OrgID    string  `json:"orgId"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// ProfileDTO is the wire shape of a directory profile
type ProfileDTO struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// MembershipDTO is the wire shape of a membership row
type MembershipDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	ProfileID string `json:"profileId"`
}

func toProjectDTOs(projects []domain.Project) []ProjectDTO {
	out := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectDTO{
			ID:       p.ID,
			OrgID:    p.OrgID,
			Name:     p.Name,
			ParentID: p.ParentID,
			IsActive: p.IsActive,
		})
	}
	return out
}

func toProfileDTOs(profiles []domain.Profile) []ProfileDTO {
	out := make([]ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ProfileDTO{
			ID:       p.ID,
			FullName: p.DisplayName(),
			Role:     string(p.Role),
		})
	}
	return out
}

func toMembershipDTOs(members []domain.Membership) []MembershipDTO {
	out := make([]MembershipDTO, 0, len(members))
	for _, m := range members {
		out = append(out, MembershipDTO{
			ID:        m.ID,
			ProjectID: m.ProjectID,
			ProfileID: m.ProfileID,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && log != nil {
		log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// viewerWorkspace resolves the authenticated viewer's workspace from
// the request claims. Writes a 401 and returns false when the identity
// is unresolved.
func viewerWorkspace(w http.ResponseWriter, r *http.Request, registry *service.Registry) (*service.Workspace, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil || claims.OrgID == "" || claims.ProfileID == "" {
		http.Error(w, `{"error":"not signed in"}`, http.StatusUnauthorized)
		return nil, false
	}
	ws := registry.Acquire(claims.OrgID, claims.ProfileID, domain.Role(claims.Role))
	return ws, true
}
