package service

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/events"
	"github.com/yourorg/projectdesk/internal/security"
	"github.com/yourorg/projectdesk/pkg/cache"
)

// Publisher broadcasts mutation events to connected clients
type Publisher interface {
	Publish(ev events.Event)
}

// Workspace holds the per-viewer view of the organization: the visible
// project list, the active profile directory, the lazily loaded
// membership sets, and the user-visible message buffer. It is the
// server-side analog of interactive client state, so all fields are
// guarded by a single mutex and mutations are interleaved, never
// concurrent.
type Workspace struct {
	mu sync.Mutex

	orgID    string
	viewerID string
	role     domain.Role

	// generation tracks the (org, viewer, privileged) tuple; a
	// resolution whose captured generation is stale by write-back time
	// discards its results instead of applying them.
	generation uint64

	projects        []domain.Project
	directory       []domain.Profile
	directoryLoaded bool

	// members maps project id to its loaded active membership set.
	// Absence means "not yet loaded"; an empty slice means "loaded and
	// empty". Both states matter for candidate derivation.
	members map[string][]domain.Membership

	messages []string

	lastAccess time.Time
}

func newWorkspace(orgID, viewerID string, role domain.Role) *Workspace {
	return &Workspace{
		orgID:      orgID,
		viewerID:   viewerID,
		role:       role,
		members:    make(map[string][]domain.Membership),
		lastAccess: time.Now(),
	}
}

// setRole updates the viewer's role. Changing privileged status
// invalidates any in-flight resolution.
func (w *Workspace) setRole(role domain.Role) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if role.Privileged() != w.role.Privileged() {
		w.generation++
	}
	w.role = role
}

// beginAction clears the message buffer and returns a snapshot of the
// viewer identity for the operation to run against.
func (w *Workspace) beginAction() (orgID, viewerID string, role domain.Role, generation uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = nil
	return w.orgID, w.viewerID, w.role, w.generation
}

func (w *Workspace) appendMessage(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
}

// Projects returns a copy of the currently visible project list
func (w *Workspace) Projects() []domain.Project {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Project, len(w.projects))
	copy(out, w.projects)
	return out
}

// Directory returns a copy of the loaded active profile directory
func (w *Workspace) Directory() []domain.Profile {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Profile, len(w.directory))
	copy(out, w.directory)
	return out
}

// Members returns the loaded membership set for a project and whether
// it has been loaded at all
func (w *Workspace) Members(projectID string) ([]domain.Membership, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	set, loaded := w.members[projectID]
	out := make([]domain.Membership, len(set))
	copy(out, set)
	return out, loaded
}

// Messages returns the accumulated user-visible messages for the most
// recent top-level action
func (w *Workspace) Messages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.messages))
	copy(out, w.messages)
	return out
}

// Message joins the buffer into the newline-separated form shown to
// the viewer. Empty when the last action fully succeeded.
func (w *Workspace) Message() string {
	return strings.Join(w.Messages(), "\n")
}

// WorkspaceService drives project visibility, membership management,
// candidate derivation, and project creation against the backing store
type WorkspaceService struct {
	profiles    domain.ProfileRepository
	projects    domain.ProjectRepository
	memberships domain.MembershipRepository

	directoryCache *cache.Cache
	directoryTTL   time.Duration

	publisher Publisher
	authz     *security.AuthorizationService
	logger    *slog.Logger

	// uniqueMembership switches on the store-boundary duplicate check
	// for AddMember. Off by default; the candidate filter is then the
	// only guard against duplicate active memberships.
	uniqueMembership bool
}

// Option configures a WorkspaceService
type Option func(*WorkspaceService)

// WithDirectoryCache fronts directory fetches with a TTL cache
func WithDirectoryCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *WorkspaceService) {
		s.directoryCache = c
		s.directoryTTL = ttl
	}
}

// WithPublisher wires an event publisher for mutation broadcasts
func WithPublisher(p Publisher) Option {
	return func(s *WorkspaceService) { s.publisher = p }
}

// WithUniqueMembership enables the duplicate-membership check at the
// store boundary
func WithUniqueMembership(enabled bool) Option {
	return func(s *WorkspaceService) { s.uniqueMembership = enabled }
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	profiles domain.ProfileRepository,
	projects domain.ProjectRepository,
	memberships domain.MembershipRepository,
	logger *slog.Logger,
	opts ...Option,
) *WorkspaceService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &WorkspaceService{
		profiles:    profiles,
		projects:    projects,
		memberships: memberships,
		authz:       security.NewAuthorizationService(logger),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WorkspaceService) publish(ev events.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}
