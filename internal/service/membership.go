package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yourorg/projectdesk/internal/domain"
	"github.com/yourorg/projectdesk/internal/events"
	"github.com/yourorg/projectdesk/internal/observability/metrics"
)

// LoadMembers fetches the active membership set for a project and
// replaces the workspace's cached set wholesale. On failure the prior
// set stays untouched and the store error lands in the message buffer.
// Safe to call repeatedly; concurrent refreshes for the same project
// race and the last response wins.
func (s *WorkspaceService) LoadMembers(ctx context.Context, ws *Workspace, projectID string) {
	ws.beginAction()
	s.refreshMembers(ws, projectID)
}

func (s *WorkspaceService) refreshMembers(ws *Workspace, projectID string) {
	rows, err := s.memberships.ListActiveByProject(projectID)

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err != nil {
		ws.messages = append(ws.messages, err.Error())
		return
	}
	if rows == nil {
		rows = []domain.Membership{}
	}
	ws.members[projectID] = rows
}

// AddMember assigns a profile to a project. A blank profile id is a
// silent no-op, not an error. On success the membership set is
// re-loaded from the store rather than patched locally, so store-side
// defaults are reflected.
func (s *WorkspaceService) AddMember(ctx context.Context, ws *Workspace, projectID, profileID string) {
	orgID, viewerID, _, _ := ws.beginAction()

	if strings.TrimSpace(profileID) == "" {
		return
	}

	if s.uniqueMembership {
		exists, err := s.memberships.ActiveExists(projectID, profileID)
		if err != nil {
			ws.appendMessage(err.Error())
			metrics.ObserveMembershipMutation("add", "error")
			return
		}
		if exists {
			// Already assigned; keep the legacy silent behavior.
			metrics.ObserveMembershipMutation("add", "duplicate")
			return
		}
	}

	m := &domain.Membership{
		OrgID:     orgID,
		ProjectID: projectID,
		ProfileID: profileID,
	}
	if err := s.memberships.Create(m); err != nil {
		ws.appendMessage(err.Error())
		metrics.ObserveMembershipMutation("add", "error")
		return
	}

	s.logger.Info("member added",
		slog.String("project_id", projectID),
		slog.String("profile_id", profileID),
		slog.String("added_by", viewerID),
	)
	metrics.ObserveMembershipMutation("add", "ok")
	s.publish(events.Event{
		Type:         events.MemberAdded,
		OrgID:        orgID,
		ProjectID:    projectID,
		ProfileID:    profileID,
		MembershipID: m.ID,
	})

	s.refreshMembers(ws, projectID)
}

// RemoveMember soft-deletes a membership row by its own id, then
// re-loads the project's membership set. The row survives with
// is_active set to false, preserving history.
func (s *WorkspaceService) RemoveMember(ctx context.Context, ws *Workspace, projectID, membershipID string) {
	orgID, viewerID, _, _ := ws.beginAction()

	if err := s.memberships.Deactivate(membershipID); err != nil {
		ws.appendMessage(err.Error())
		metrics.ObserveMembershipMutation("remove", "error")
		return
	}

	s.logger.Info("member removed",
		slog.String("project_id", projectID),
		slog.String("membership_id", membershipID),
		slog.String("removed_by", viewerID),
	)
	metrics.ObserveMembershipMutation("remove", "ok")
	s.publish(events.Event{
		Type:         events.MemberRemoved,
		OrgID:        orgID,
		ProjectID:    projectID,
		MembershipID: membershipID,
	})

	s.refreshMembers(ws, projectID)
}
