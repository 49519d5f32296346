package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/events"
	"github.com/yourorg/projectdesk/internal/observability/metrics"
	"github.com/yourorg/projectdesk/internal/security"
)

// CreateProject inserts a new project for the viewer's organization.
// Only privileged roles may create; a rejected caller gets a
// user-visible message and no store call happens. A name that trims to
// empty is a silent no-op. On success the returned row is merged into
// the visible list, which is re-sorted by name so the new project
// lands in position rather than at the end.
//
// Returns the created project, or nil when nothing was inserted.
func (s *WorkspaceService) CreateProject(ctx context.Context, ws *Workspace, name string) *domain.Project {
	orgID, viewerID, role, _ := ws.beginAction()

	if err := s.authz.ValidatePermission(role, security.PermCreateProject); err != nil {
		ws.appendMessage("only admins and managers can create projects")
		metrics.ObserveProjectCreation("denied")
		return nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	project := &domain.Project{
		OrgID: orgID,
		Name:  name,
	}
	if err := s.projects.Create(project); err != nil {
		ws.appendMessage(err.Error())
		metrics.ObserveProjectCreation("error")
		return nil
	}

	ws.mu.Lock()
	ws.projects = append(ws.projects, *project)
	sort.Slice(ws.projects, func(i, j int) bool {
		return ws.projects[i].Name < ws.projects[j].Name
	})
	ws.mu.Unlock()

	s.logger.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("org_id", orgID),
		slog.String("created_by", viewerID),
	)
	metrics.ObserveProjectCreation("ok")
	s.publish(events.Event{
		Type:      events.ProjectCreated,
		OrgID:     orgID,
		ProjectID: project.ID,
		Name:      project.Name,
	})

	return project
}
