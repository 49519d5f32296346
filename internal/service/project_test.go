package service

import (
	"context"
	"testing"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/events"
)

func TestCreateProjectContractorDenied(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-bob", domain.RoleContractor)

	created := s.CreateProject(context.Background(), ws, "Skunkworks")

	if created != nil {
		t.Fatalf("contractor create should return nil")
	}
	if projects.creates != 0 {
		t.Fatalf("denied create must not reach the store")
	}
	if ws.Message() != "only admins and managers can create projects" {
		t.Fatalf("message = %q", ws.Message())
	}
}

func TestCreateProjectWhitespaceNameIsNoOp(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	s.Resolve(context.Background(), ws)
	before := projectNames(ws.Projects())

	created := s.CreateProject(context.Background(), ws, "   ")

	if created != nil || projects.creates != 0 {
		t.Fatalf("whitespace-only name must not insert")
	}
	if ws.Message() != "" {
		t.Fatalf("whitespace-only name is silent, got %q", ws.Message())
	}
	if got := projectNames(ws.Projects()); !sameStrings(got, before) {
		t.Fatalf("visible list changed: %v", got)
	}
}

func TestCreateProjectSortsIntoPlace(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	pub := &capturingPublisher{}
	s := newTestService(profiles, projects, memberships, WithPublisher(pub))
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	s.Resolve(context.Background(), ws)

	created := s.CreateProject(context.Background(), ws, "  Bravo  ")
	if created == nil {
		t.Fatalf("create failed: %s", ws.Message())
	}
	if created.Name != "Bravo" {
		t.Fatalf("name should be trimmed before insert, got %q", created.Name)
	}
	if created.ID == "" || !domain.Active(created.IsActive) {
		t.Fatalf("created project missing store defaults: %+v", created)
	}

	// The new project lands in sorted position, not at the end
	got := projectNames(ws.Projects())
	want := []string{"Alpha", "Beta", "Bravo", "Retired"}
	if !sameStrings(got, want) {
		t.Fatalf("projects = %v, want %v", got, want)
	}

	evs := pub.byType(events.ProjectCreated)
	if len(evs) != 1 || evs[0].Name != "Bravo" || evs[0].OrgID != "org-1" {
		t.Fatalf("expected one project-created event, got %v", evs)
	}

	// Non-ASCII names still land in byte-order position
	if created := s.CreateProject(context.Background(), ws, "KeHE — Ops"); created == nil {
		t.Fatalf("create failed: %s", ws.Message())
	}
	got = projectNames(ws.Projects())
	want = []string{"Alpha", "Beta", "Bravo", "KeHE — Ops", "Retired"}
	if !sameStrings(got, want) {
		t.Fatalf("projects = %v, want %v", got, want)
	}
}

func TestCreateProjectManagerAllowed(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-mgr", domain.RoleManager)

	if created := s.CreateProject(context.Background(), ws, "Managed"); created == nil {
		t.Fatalf("manager create should succeed: %s", ws.Message())
	}
}

func TestCreateProjectStoreFailure(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	s.Resolve(context.Background(), ws)
	before := projectNames(ws.Projects())

	projects.createErr = errTest("insert failed")
	created := s.CreateProject(context.Background(), ws, "Doomed")

	if created != nil {
		t.Fatalf("failed create should return nil")
	}
	if ws.Message() != "insert failed" {
		t.Fatalf("message = %q, want the store error", ws.Message())
	}
	if got := projectNames(ws.Projects()); !sameStrings(got, before) {
		t.Fatalf("failed create changed the visible list: %v", got)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
