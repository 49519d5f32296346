package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/projectdesk/internal/security/audit"
	"github.com/yourorg/projectdesk/internal/security/auth"
	"github.com/yourorg/projectdesk/internal/security/middleware"
)

// SignOutHandler revokes the caller's token. The client navigates to
// its login surface afterwards; the revoked token is refused until it
// would have expired anyway.
type SignOutHandler struct {
	revoker *auth.Revoker
	audit   *audit.Logger
	logger  *slog.Logger
}

// NewSignOutHandler creates a new sign-out handler
func NewSignOutHandler(revoker *auth.Revoker, auditLog *audit.Logger, logger *slog.Logger) *SignOutHandler {
	return &SignOutHandler{revoker: revoker, audit: auditLog, logger: logger}
}

// ServeHTTP handles POST /api/auth/signout
func (h *SignOutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, `{"error":"not signed in"}`, http.StatusUnauthorized)
		return
	}

	if err := h.revoker.Revoke(r.Context(), claims); err != nil {
		h.logger.Error("sign-out failed",
			slog.String("profile_id", claims.ProfileID),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"sign-out failed"}`, http.StatusInternalServerError)
		return
	}

	h.audit.LogSignOut(r.Context(), claims.OrgID, claims.ProfileID)
	w.WriteHeader(http.StatusNoContent)
}
