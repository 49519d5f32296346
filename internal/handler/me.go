package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/security"
	"github.com/yourorg/projectdesk/internal/security/middleware"
)

// MeHandler reports the authenticated viewer's identity and permissions
type MeHandler struct {
	authz  *security.AuthorizationService
	logger *slog.Logger
}

// NewMeHandler creates a new identity handler
func NewMeHandler(authz *security.AuthorizationService, logger *slog.Logger) *MeHandler {
	return &MeHandler{authz: authz, logger: logger}
}

// MeResponse is the viewer identity payload
type MeResponse struct {
	ProfileID   string                `json:"profileId"`
	OrgID       string                `json:"orgId"`
	Role        string                `json:"role"`
	Privileged  bool                  `json:"privileged"`
	Permissions []security.Permission `json:"permissions"`
}

// ServeHTTP handles GET /api/me
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, `{"error":"not signed in"}`, http.StatusUnauthorized)
		return
	}

	role := domain.Role(claims.Role)
	writeJSON(w, h.logger, http.StatusOK, MeResponse{
		ProfileID:   claims.ProfileID,
		OrgID:       claims.OrgID,
		Role:        claims.Role,
		Privileged:  role.Privileged(),
		Permissions: h.authz.GetRolePermissions(role),
	})
}
