package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/observability/metrics"
)

// visibilityStrategy resolves the project set visible to a viewer.
// The privileged variant sees the whole organization; the member
// variant only sees projects joined through active memberships.
type visibilityStrategy interface {
	name() string
	resolveProjects(orgID, viewerID string) ([]domain.Project, error)
}

// orgWideVisibility loads every project in the organization, ordered
// by name. Personal membership is irrelevant on this path.
type orgWideVisibility struct {
	projects domain.ProjectRepository
}

func (v orgWideVisibility) name() string { return "privileged" }

func (v orgWideVisibility) resolveProjects(orgID, _ string) ([]domain.Project, error) {
	return v.projects.ListByOrg(orgID)
}

// memberVisibility loads the projects joined through the viewer's
// active memberships, then drops projects whose own activity flag is
// an explicit false. The join can surface admin-deactivated projects
// whose membership rows were never cleaned up; the second filter keeps
// contractors off retired projects regardless.
type memberVisibility struct {
	projects domain.ProjectRepository
}

func (v memberVisibility) name() string { return "member" }

func (v memberVisibility) resolveProjects(orgID, viewerID string) ([]domain.Project, error) {
	joined, err := v.projects.ListForMember(orgID, viewerID)
	if err != nil {
		return nil, err
	}
	var visible []domain.Project
	for _, p := range joined {
		if domain.Active(p.IsActive) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *WorkspaceService) strategyFor(role domain.Role) visibilityStrategy {
	if role.Privileged() {
		return orgWideVisibility{projects: s.projects}
	}
	return memberVisibility{projects: s.projects}
}

// Resolve loads the viewer's visible projects and the organization's
// active profile directory into the workspace. The two fetches run
// concurrently and are both attempted even if one fails; each failure
// appends its store error to the message buffer. A resolution whose
// identity tuple has changed by the time it completes discards its
// results.
func (s *WorkspaceService) Resolve(ctx context.Context, ws *Workspace) {
	orgID, viewerID, role, gen := ws.beginAction()

	// Identity unresolved: nothing to load, nothing to report.
	if orgID == "" || viewerID == "" {
		return
	}

	strategy := s.strategyFor(role)

	var (
		wg       sync.WaitGroup
		dir      []domain.Profile
		dirErr   error
		projs    []domain.Project
		projsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		dir, dirErr = s.loadDirectory(orgID)
	}()
	go func() {
		defer wg.Done()
		projs, projsErr = strategy.resolveProjects(orgID, viewerID)
	}()
	wg.Wait()

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.generation != gen {
		// The triggering identity changed mid-flight; a fresh
		// resolution owns the workspace now.
		metrics.ObserveResolution(strategy.name(), "stale")
		s.logger.Info("dropping stale resolution",
			slog.String("org_id", orgID),
			slog.String("viewer_id", viewerID),
			slog.String("path", strategy.name()),
		)
		return
	}

	if dirErr != nil {
		ws.messages = append(ws.messages, dirErr.Error())
	} else {
		ws.directory = dir
		ws.directoryLoaded = true
	}

	if projsErr != nil {
		ws.messages = append(ws.messages, projsErr.Error())
	} else {
		ws.projects = projs
	}

	result := "ok"
	if dirErr != nil || projsErr != nil {
		result = "error"
	}
	metrics.ObserveResolution(strategy.name(), result)
}

// loadDirectory fetches the active profile directory for an
// organization, fronted by a short-TTL cache when configured. The
// store stays the source of truth; the cache only smooths bursts of
// resolutions within one organization.
func (s *WorkspaceService) loadDirectory(orgID string) ([]domain.Profile, error) {
	key := "directory:" + orgID
	if s.directoryCache != nil {
		if v, ok := s.directoryCache.Get(key); ok {
			metrics.ObserveDirectoryCache(true)
			return v.([]domain.Profile), nil
		}
		metrics.ObserveDirectoryCache(false)
	}
	profiles, err := s.profiles.ListActiveByOrg(orgID)
	if err != nil {
		return nil, err
	}
	if s.directoryCache != nil {
		s.directoryCache.Set(key, profiles, s.directoryTTL)
	}
	return profiles, nil
}
