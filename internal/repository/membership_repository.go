package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/projectdesk/internal/domain"
)

// PostgresMembershipRepository implements domain.MembershipRepository using PostgreSQL
type PostgresMembershipRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresMembershipRepository creates a new membership repository
func NewPostgresMembershipRepository(db *sql.DB, logger *slog.Logger) *PostgresMembershipRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMembershipRepository{db: db, logger: logger}
}

// ListActiveByProject returns the active membership rows for a project
func (r *PostgresMembershipRepository) ListActiveByProject(projectID string) ([]domain.Membership, error) {
	query := `
		SELECT id, org_id, project_id, profile_id, is_active
		FROM project_members
		WHERE project_id = $1 AND is_active IS NOT FALSE
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		m := domain.Membership{}
		var isActive sql.NullBool
		if err := rows.Scan(&m.ID, &m.OrgID, &m.ProjectID, &m.ProfileID, &isActive); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if isActive.Valid {
			m.IsActive = &isActive.Bool
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts a new active membership and fills the generated id
func (r *PostgresMembershipRepository) Create(membership *domain.Membership) error {
	query := `
		INSERT INTO project_members (org_id, project_id, profile_id, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id
	`
	err := r.db.QueryRow(query, membership.OrgID, membership.ProjectID, membership.ProfileID).Scan(&membership.ID)
	if err != nil {
		r.logger.Error("failed to create membership",
			slog.String("project_id", membership.ProjectID),
			slog.String("profile_id", membership.ProfileID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a membership row by id. The row is kept for
// audit history; only is_active flips to false.
func (r *PostgresMembershipRepository) Deactivate(membershipID string) error {
	query := `
		UPDATE project_members SET is_active = FALSE WHERE id = $1
	`
	res, err := r.db.Exec(query, membershipID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("membership not found")
	}
	return nil
}

// ActiveExists reports whether an active membership already joins the
// profile to the project
func (r *PostgresMembershipRepository) ActiveExists(projectID, profileID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_members
			WHERE project_id = $1 AND profile_id = $2 AND is_active IS NOT FALSE
		)
	`
	var exists bool
	if err := r.db.QueryRow(query, projectID, profileID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}
