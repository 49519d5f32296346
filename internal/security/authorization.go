package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/projectdesk/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermViewAllProjects    Permission = "view_all_projects"
	PermViewMemberProjects Permission = "view_member_projects"
	PermCreateProject      Permission = "create_project"
	PermManageMembers      Permission = "manage_members"
	PermViewDirectory      Permission = "view_directory"
)

// RolePermissions maps roles to their permissions. These gates are a
// UX convenience; row-level security at the store is the actual
// security boundary.
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermViewAllProjects,
		PermCreateProject,
		PermManageMembers,
		PermViewDirectory,
	},
	domain.RoleManager: {
		PermViewAllProjects,
		PermCreateProject,
		PermManageMembers,
		PermViewDirectory,
	},
	domain.RoleContractor: {
		PermViewMemberProjects,
		PermManageMembers,
		PermViewDirectory,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: %s role cannot %s", role, permission)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role domain.Role) []Permission {
	return RolePermissions[role]
}

// ValidateOrgAccess checks that the viewer belongs to the requested
// organization
func (as *AuthorizationService) ValidateOrgAccess(viewerOrgID, requestedOrgID string) error {
	if viewerOrgID != requestedOrgID {
		as.logger.Warn("organization access denied",
			slog.String("viewer_org", viewerOrgID),
			slog.String("requested_org", requestedOrgID),
		)
		return fmt.Errorf("access denied: invalid organization")
	}
	return nil
}
