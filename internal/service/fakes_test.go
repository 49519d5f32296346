package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/events"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

type memProfileRepo struct {
	mu       sync.Mutex
	profiles []domain.Profile
	listErr  error
	calls    int
}

func (m *memProfileRepo) ListActiveByOrg(orgID string) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.Profile{}
	for _, p := range m.profiles {
		if p.OrgID == orgID && domain.Active(p.IsActive) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].DisplayName() < out[j].DisplayName()
	})
	return out, nil
}

func (m *memProfileRepo) GetByID(id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			return &m.profiles[i], nil
		}
	}
	return nil, errors.New("profile not found")
}

type memProjectRepo struct {
	mu          sync.Mutex
	projects    []domain.Project
	memberships *memMembershipRepo
	listErr     error
	createErr   error
	creates     int

	// memberGate, when set, makes ListForMember block until released.
	// entered is closed once the call is in flight.
	memberGate chan struct{}
	entered    chan struct{}
}

func (m *memProjectRepo) ListByOrg(orgID string) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.Project{}
	for _, p := range m.projects {
		if p.OrgID == orgID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memProjectRepo) ListForMember(orgID, profileID string) ([]domain.Project, error) {
	m.mu.Lock()
	gate, entered := m.memberGate, m.entered
	m.mu.Unlock()
	if gate != nil {
		if entered != nil {
			close(entered)
		}
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	joined := map[string]bool{}
	for _, row := range m.memberships.rows {
		if row.OrgID == orgID && row.ProfileID == profileID && domain.Active(row.IsActive) {
			joined[row.ProjectID] = true
		}
	}
	out := []domain.Project{}
	for _, p := range m.projects {
		if p.OrgID == orgID && joined[p.ID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memProjectRepo) Create(project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.creates++
	project.ID = fmt.Sprintf("p-%d", len(m.projects)+1)
	project.IsActive = boolptr(true)
	m.projects = append(m.projects, *project)
	return nil
}

type memMembershipRepo struct {
	mu            sync.Mutex
	rows          []domain.Membership
	listErr       error
	createErr     error
	deactivateErr error
}

func (m *memMembershipRepo) ListActiveByProject(projectID string) ([]domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.Membership{}
	for _, row := range m.rows {
		if row.ProjectID == projectID && domain.Active(row.IsActive) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memMembershipRepo) Create(membership *domain.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	membership.ID = fmt.Sprintf("m-%d", len(m.rows)+1)
	membership.IsActive = boolptr(true)
	m.rows = append(m.rows, *membership)
	return nil
}

func (m *memMembershipRepo) Deactivate(membershipID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deactivateErr != nil {
		return m.deactivateErr
	}
	for i := range m.rows {
		if m.rows[i].ID == membershipID {
			m.rows[i].IsActive = boolptr(false)
			return nil
		}
	}
	return errors.New("membership not found")
}

func (m *memMembershipRepo) ActiveExists(projectID, profileID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ProjectID == projectID && row.ProfileID == profileID && domain.Active(row.IsActive) {
			return true, nil
		}
	}
	return false, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturingPublisher) Publish(ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *capturingPublisher) byType(t string) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []events.Event{}
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// orgFixture builds a small organization: two active projects, one
// retired project, an admin, a manager, and two contractors. Bob holds
// an active membership on Alpha and a soft-deleted one on Beta; Carol
// holds none.
func orgFixture() (*memProfileRepo, *memProjectRepo, *memMembershipRepo) {
	profiles := &memProfileRepo{profiles: []domain.Profile{
		{ID: "u-admin", OrgID: "org-1", FullName: strptr("Ada Admin"), Role: domain.RoleAdmin},
		{ID: "u-mgr", OrgID: "org-1", FullName: strptr("Mia Manager"), Role: domain.RoleManager},
		{ID: "u-bob", OrgID: "org-1", FullName: strptr("Bob Builder"), Role: domain.RoleContractor},
		{ID: "u-carol", OrgID: "org-1", FullName: strptr("Carol Coder"), Role: domain.RoleContractor},
		{ID: "u-gone", OrgID: "org-1", FullName: strptr("Gone Person"), Role: domain.RoleContractor, IsActive: boolptr(false)},
		{ID: "u-other", OrgID: "org-2", FullName: strptr("Other Org"), Role: domain.RoleAdmin},
	}}
	memberships := &memMembershipRepo{rows: []domain.Membership{
		{ID: "m-1", OrgID: "org-1", ProjectID: "p-alpha", ProfileID: "u-bob"},
		{ID: "m-2", OrgID: "org-1", ProjectID: "p-beta", ProfileID: "u-bob", IsActive: boolptr(false)},
	}}
	projects := &memProjectRepo{
		projects: []domain.Project{
			{ID: "p-alpha", OrgID: "org-1", Name: "Alpha"},
			{ID: "p-beta", OrgID: "org-1", Name: "Beta", IsActive: boolptr(true)},
			{ID: "p-retired", OrgID: "org-1", Name: "Retired", IsActive: boolptr(false)},
			{ID: "p-elsewhere", OrgID: "org-2", Name: "Elsewhere"},
		},
		memberships: memberships,
	}
	return profiles, projects, memberships
}

func newTestService(profiles *memProfileRepo, projects *memProjectRepo, memberships *memMembershipRepo, opts ...Option) *WorkspaceService {
	return NewWorkspaceService(profiles, projects, memberships, nil, opts...)
}

func projectNames(projects []domain.Project) []string {
	out := []string{}
	for _, p := range projects {
		out = append(out, p.Name)
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
