package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/security/auth"
	"github.com/yourorg/projectdesk/internal/security/middleware"
	"github.com/yourorg/projectdesk/internal/service"
)

type memProfileRepo struct{ profiles []domain.Profile }

func (m *memProfileRepo) ListActiveByOrg(orgID string) ([]domain.Profile, error) {
	out := []domain.Profile{}
	for _, p := range m.profiles {
		if p.OrgID == orgID && domain.Active(p.IsActive) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProfileRepo) GetByID(id string) (*domain.Profile, error) {
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			return &m.profiles[i], nil
		}
	}
	return nil, errors.New("profile not found")
}

type memProjectRepo struct {
	projects    []domain.Project
	memberships *memMembershipRepo
}

func (m *memProjectRepo) ListByOrg(orgID string) ([]domain.Project, error) {
	out := []domain.Project{}
	for _, p := range m.projects {
		if p.OrgID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjectRepo) ListForMember(orgID, profileID string) ([]domain.Project, error) {
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
	return out, nil
}

func (m *memProjectRepo) Create(project *domain.Project) error {
	project.ID = fmt.Sprintf("p-%d", len(m.projects)+1)
	m.projects = append(m.projects, *project)
	return nil
}

type memMembershipRepo struct{ rows []domain.Membership }

func (m *memMembershipRepo) ListActiveByProject(projectID string) ([]domain.Membership, error) {
	out := []domain.Membership{}
	for _, row := range m.rows {
		if row.ProjectID == projectID && domain.Active(row.IsActive) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memMembershipRepo) Create(membership *domain.Membership) error {
	membership.ID = fmt.Sprintf("m-%d", len(m.rows)+1)
	m.rows = append(m.rows, *membership)
	return nil
}

func (m *memMembershipRepo) Deactivate(membershipID string) error {
	for i := range m.rows {
		if m.rows[i].ID == membershipID {
			f := false
			m.rows[i].IsActive = &f
			return nil
		}
	}
	return errors.New("membership not found")
}

func (m *memMembershipRepo) ActiveExists(projectID, profileID string) (bool, error) {
	for _, row := range m.rows {
		if row.ProjectID == projectID && row.ProfileID == profileID && domain.Active(row.IsActive) {
			return true, nil
		}
	}
	return false, nil
}

// newTestMux wires the API routes against in-memory stores, with a
// stub auth layer that injects the given claims into every request.
func newTestMux(claims *auth.Claims) (*http.ServeMux, *memProjectRepo) {
	name := "Bob Builder"
	profiles := &memProfileRepo{profiles: []domain.Profile{
		{ID: "u-admin", OrgID: "org-1", Role: domain.RoleAdmin},
		{ID: "u-bob", OrgID: "org-1", FullName: &name, Role: domain.RoleContractor},
	}}
	memberships := &memMembershipRepo{rows: []domain.Membership{
		{ID: "m-1", OrgID: "org-1", ProjectID: "p-alpha", ProfileID: "u-bob"},
	}}
	projects := &memProjectRepo{
		projects: []domain.Project{
			{ID: "p-alpha", OrgID: "org-1", Name: "Alpha"},
			{ID: "p-beta", OrgID: "org-1", Name: "Beta"},
		},
		memberships: memberships,
	}

	svc := service.NewWorkspaceService(profiles, projects, memberships, slog.Default())
	registry := service.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("GET /api/projects", withClaims(claims, NewProjectsHandler(svc, registry, slog.Default())))
	mux.Handle("POST /api/projects", withClaims(claims, NewCreateProjectHandler(svc, registry, slog.Default())))
	members := NewMembersHandler(svc, registry, slog.Default())
	mux.Handle("GET /api/projects/{id}/members", withClaims(claims, http.HandlerFunc(members.List)))
	mux.Handle("POST /api/projects/{id}/members", withClaims(claims, http.HandlerFunc(members.Add)))
	mux.Handle("DELETE /api/projects/{id}/members/{memberId}", withClaims(claims, http.HandlerFunc(members.Remove)))
	return mux, projects
}

func withClaims(claims *auth.Claims, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims != nil {
			ctx := context.WithValue(r.Context(), middleware.ClaimsContextKey{}, claims)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func adminClaims() *auth.Claims {
	return &auth.Claims{OrgID: "org-1", ProfileID: "u-admin", Role: "admin"}
}

func contractorClaims() *auth.Claims {
	return &auth.Claims{OrgID: "org-1", ProfileID: "u-bob", Role: "contractor"}
}

func TestListProjectsAdmin(t *testing.T) {
	mux, _ := newTestMux(adminClaims())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/projects", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp ProjectListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Projects) != 2 {
		t.Fatalf("admin should see both projects, got %d", len(resp.Projects))
	}
	if resp.Message != "" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestListProjectsContractor(t *testing.T) {
	mux, _ := newTestMux(contractorClaims())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/projects", nil))

	var resp ProjectListResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Projects) != 1 || resp.Projects[0].Name != "Alpha" {
		t.Fatalf("contractor should only see Alpha, got %+v", resp.Projects)
	}
}

func TestListProjectsUnauthenticated(t *testing.T) {
	mux, _ := newTestMux(nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/projects", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateProject(t *testing.T) {
	mux, projects := newTestMux(adminClaims())

	body := bytes.NewBufferString(`{"name":"Gamma"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/projects", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(projects.projects) != 3 {
		t.Fatalf("expected insert, store has %d projects", len(projects.projects))
	}
}

func TestCreateProjectDenied(t *testing.T) {
	mux, projects := newTestMux(contractorClaims())

	body := bytes.NewBufferString(`{"name":"Gamma"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/projects", body))

	// Denial is a message in the body, not an HTTP error
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp ProjectListResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Message == "" {
		t.Fatalf("expected a rejection message")
	}
	if len(projects.projects) != 2 {
		t.Fatalf("denied create must not insert")
	}
}

func TestMemberLifecycle(t *testing.T) {
	mux, _ := newTestMux(adminClaims())

	// Load
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/projects/p-alpha/members", nil))
	var resp MemberListResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Loaded || len(resp.Members) != 1 {
		t.Fatalf("expected one loaded member, got %+v", resp)
	}

	// Add
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/projects/p-alpha/members",
		bytes.NewBufferString(`{"profileId":"u-admin"}`)))
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Members) != 2 {
		t.Fatalf("expected two members after add, got %d", len(resp.Members))
	}

	// Remove the original row
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/projects/p-alpha/members/m-1", nil))
	resp = MemberListResponse{}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Members) != 1 {
		t.Fatalf("expected one member after removal, got %d", len(resp.Members))
	}
	for _, m := range resp.Members {
		if m.ID == "m-1" {
			t.Fatalf("removed membership still listed")
		}
	}
}
