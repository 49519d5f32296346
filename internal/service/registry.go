package service

import (
	"sync"
	"time"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/observability/metrics"
)

// Registry owns the live workspaces, keyed by (org, viewer). A viewer
// gets one workspace for the lifetime of their session; idle ones are
// swept by the janitor worker.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry creates an empty workspace registry
func NewRegistry() *Registry {
	return &Registry{workspaces: make(map[string]*Workspace)}
}

func registryKey(orgID, viewerID string) string {
	return orgID + "|" + viewerID
}

// Acquire returns the viewer's workspace, creating it on first use.
// The role is refreshed from the caller's claims on every acquisition;
// a privileged-status change bumps the workspace generation so any
// in-flight resolution for the old role is discarded.
func (r *Registry) Acquire(orgID, viewerID string, role domain.Role) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(orgID, viewerID)
	ws, ok := r.workspaces[key]
	if !ok {
		ws = newWorkspace(orgID, viewerID, role)
		r.workspaces[key] = ws
		metrics.SetActiveWorkspaces(len(r.workspaces))
	} else {
		ws.setRole(role)
	}

	ws.mu.Lock()
	ws.lastAccess = time.Now()
	ws.mu.Unlock()
	return ws
}

// SweepIdle evicts workspaces whose last access is older than the
// cutoff and returns how many were removed
func (r *Registry) SweepIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, ws := range r.workspaces {
		ws.mu.Lock()
		idle := ws.lastAccess.Before(cutoff)
		ws.mu.Unlock()
		if idle {
			delete(r.workspaces, key)
			evicted++
		}
	}
	if evicted > 0 {
		metrics.SetActiveWorkspaces(len(r.workspaces))
	}
	return evicted
}

// Len returns the number of live workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
