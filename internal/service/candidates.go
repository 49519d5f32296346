package service

import "github.com/yourorg/projectdesk/internal/domain"

// Candidates derives the profiles eligible for assignment to a
// project: the active org directory minus the project's currently
// loaded members, optionally narrowed to a single focus profile.
// It is recomputed from workspace state on every call, never cached,
// and inherits the directory order (role, then name).
//
// If the project's membership has not been loaded yet, the whole
// (focus-narrowed) directory is returned. That window can let a
// duplicate assignment through; the store-boundary uniqueness check
// closes it when enabled.
func (s *WorkspaceService) Candidates(ws *Workspace, projectID, focusProfileID string) []domain.Profile {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	set, loaded := ws.members[projectID]
	assigned := make(map[string]bool, len(set))
	if loaded {
		for _, m := range set {
			assigned[m.ProfileID] = true
		}
	}

	out := []domain.Profile{}
	for _, p := range ws.directory {
		if focusProfileID != "" && p.ID != focusProfileID {
			continue
		}
		if assigned[p.ID] {
			continue
		}
		out = append(out, p)
	}
	return out
}
