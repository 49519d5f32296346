package domain

// Role represents a profile's role within its organization
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleContractor Role = "contractor"
)

// Privileged reports whether the role sees every project in the
// organization. Contractors only see projects they are assigned to.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleContractor
}

// Active evaluates a tri-state activity flag: a row is active unless
// the flag is an explicit false. A missing (nil) flag counts as active.
func Active(flag *bool) bool {
	return flag == nil || *flag
}

// Profile represents a person in an organization
type Profile struct {
	ID        string // UUID
	OrgID     string // UUID of the owning organization
	FullName  *string
	Role      Role
	IsActive  *bool   // tri-state, only explicit false is inactive
	ManagerID *string // optional back-reference to a managing profile
}

// DisplayName returns the profile's full name, falling back to the id
// for profiles created without one.
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.ID
}

// Project represents a unit of work scoped to an organization
type Project struct {
	ID       string // UUID
	OrgID    string // UUID of the owning organization
	Name     string
	ParentID *string // optional hierarchy hook, unused by visibility
	IsActive *bool   // tri-state, only explicit false is inactive
}

// Membership joins a profile to a project. Removal is a soft-delete
// that flips IsActive to false; rows are never hard-deleted.
type Membership struct {
	ID        string // UUID
	OrgID     string
	ProjectID string
	ProfileID string
	IsActive  *bool // tri-state, only explicit false is inactive
}

// ProfileRepository defines data access for profiles
type ProfileRepository interface {
	// ListActiveByOrg returns active profiles for an organization,
	// ordered by role ascending then full name ascending.
	ListActiveByOrg(orgID string) ([]Profile, error)
	GetByID(id string) (*Profile, error)
}

// ProjectRepository defines data access for projects
type ProjectRepository interface {
	// ListByOrg returns every project in the organization ordered by
	// name ascending, regardless of activity.
	ListByOrg(orgID string) ([]Project, error)
	// ListForMember returns the projects joined through the profile's
	// active memberships. Inactive projects are not filtered here; the
	// caller applies the activity check.
	ListForMember(orgID, profileID string) ([]Project, error)
	// Create inserts a new active project and fills the generated
	// fields on the passed struct.
	Create(project *Project) error
}

// MembershipRepository defines data access for project memberships
type MembershipRepository interface {
	ListActiveByProject(projectID string) ([]Membership, error)
	// Create inserts a new active membership and fills the generated id.
	Create(membership *Membership) error
	// Deactivate soft-deletes a membership row by its own id.
	Deactivate(membershipID string) error
	// ActiveExists reports whether an active membership already joins
	// the profile to the project.
	ActiveExists(projectID, profileID string) (bool, error)
}
