package service

import (
	"context"
	"testing"

	"github.com/yourorg/projectdesk/internal/domain"
)

func TestCandidatesExcludeLoadedMembers(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	s.Resolve(context.Background(), ws)
	s.LoadMembers(context.Background(), ws, "p-alpha")

	got := s.Candidates(ws, "p-alpha", "")
	// Bob is assigned, so the remaining directory is eligible
	for _, p := range got {
		if p.ID == "u-bob" {
			t.Fatalf("assigned profile must not be a candidate")
		}
	}
	if len(got) != 3 {
		t.Fatalf("candidates = %d, want 3", len(got))
	}
}

func TestCandidatesInheritDirectoryOrder(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	s.Resolve(context.Background(), ws)
	s.LoadMembers(context.Background(), ws, "p-alpha")

	got := s.Candidates(ws, "p-alpha", "")
	want := []string{"u-admin", "u-carol", "u-mgr"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("candidates[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestCandidatesFocusNarrowing(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	s.Resolve(context.Background(), ws)
	s.LoadMembers(context.Background(), ws, "p-alpha")

	got := s.Candidates(ws, "p-alpha", "u-carol")
	if len(got) != 1 || got[0].ID != "u-carol" {
		t.Fatalf("focus on unassigned profile should yield just that profile, got %v", got)
	}

	// Focusing an already-assigned profile yields nothing
	if got := s.Candidates(ws, "p-alpha", "u-bob"); len(got) != 0 {
		t.Fatalf("focus on assigned profile should be empty, got %v", got)
	}
}

func TestCandidatesUnloadedMembershipReturnsWholeDirectory(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	s.Resolve(context.Background(), ws)

	// No LoadMembers call: nobody counts as assigned yet
	got := s.Candidates(ws, "p-alpha", "")
	if len(got) != 4 {
		t.Fatalf("unloaded membership should not exclude anyone, got %d", len(got))
	}
}

func TestCandidatesRecomputedAfterMutation(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	s.Resolve(context.Background(), ws)
	s.LoadMembers(context.Background(), ws, "p-alpha")

	if got := s.Candidates(ws, "p-alpha", ""); len(got) != 3 {
		t.Fatalf("setup: expected 3 candidates, got %d", len(got))
	}

	s.AddMember(context.Background(), ws, "p-alpha", "u-carol")
	got := s.Candidates(ws, "p-alpha", "")
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates after add, got %d", len(got))
	}
	for _, p := range got {
		if p.ID == "u-carol" {
			t.Fatalf("freshly assigned profile still listed as candidate")
		}
	}
}

func TestCandidatesEmptyDirectory(t *testing.T) {
	profiles, projects, memberships := orgFixture()
	s := newTestService(profiles, projects, memberships)
	ws := newWorkspace("org-1", "u-admin", domain.RoleAdmin)

	// Directory never resolved: candidates are empty, not nil-panicking
	got := s.Candidates(ws, "p-alpha", "")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}
