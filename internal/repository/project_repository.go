package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/projectdesk/internal/domain"
)

// PostgresProjectRepository implements domain.ProjectRepository using PostgreSQL
type PostgresProjectRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProjectRepository creates a new project repository
func NewPostgresProjectRepository(db *sql.DB, logger *slog.Logger) *PostgresProjectRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProjectRepository{db: db, logger: logger}
}

// ListByOrg returns every project in the organization ordered by name.
// Inactive projects are included; privileged viewers see the whole set.
func (r *PostgresProjectRepository) ListByOrg(orgID string) ([]domain.Project, error) {
	query := `
		SELECT id, org_id, name, parent_id, is_active
		FROM projects
		WHERE org_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.Query(query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

// ListForMember returns the projects joined through the profile's active
// memberships. The project's own activity flag is returned as stored so
// the caller can drop explicitly deactivated projects.
func (r *PostgresProjectRepository) ListForMember(orgID, profileID string) ([]domain.Project, error) {
	query := `
		SELECT p.id, p.org_id, p.name, p.parent_id, p.is_active
		FROM project_members m
		JOIN projects p ON p.id = m.project_id
		WHERE m.org_id = $1 AND m.profile_id = $2 AND m.is_active IS NOT FALSE
		ORDER BY p.name ASC
	`
	rows, err := r.db.Query(query, orgID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member projects: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

// Create inserts a new project as active and fills the generated id
func (r *PostgresProjectRepository) Create(project *domain.Project) error {
	query := `
		INSERT INTO projects (org_id, name, parent_id, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, is_active
	`
	var isActive sql.NullBool
	var parentID sql.NullString
	if project.ParentID != nil {
		parentID = sql.NullString{String: *project.ParentID, Valid: true}
	}
	err := r.db.QueryRow(query, project.OrgID, project.Name, parentID).Scan(&project.ID, &isActive)
	if err != nil {
		r.logger.Error("failed to create project",
			slog.String("org_id", project.OrgID),
			slog.String("name", project.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create project: %w", err)
	}
	if isActive.Valid {
		project.IsActive = &isActive.Bool
	}
	return nil
}

func collectProjects(rows *sql.Rows) ([]domain.Project, error) {
	var out []domain.Project
	for rows.Next() {
		p := domain.Project{}
		var parentID sql.NullString
		var isActive sql.NullBool
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &parentID, &isActive); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if parentID.Valid {
			p.ParentID = &parentID.String
		}
		if isActive.Valid {
			p.IsActive = &isActive.Bool
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
