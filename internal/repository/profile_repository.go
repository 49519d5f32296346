package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/projectdesk/internal/domain"
)

// PostgresProfileRepository implements domain.ProfileRepository using PostgreSQL
type PostgresProfileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProfileRepository creates a new profile repository
func NewPostgresProfileRepository(db *sql.DB, logger *slog.Logger) *PostgresProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProfileRepository{db: db, logger: logger}
}

// ListActiveByOrg returns the active profile directory for an organization,
// ordered by role then full name. Rows with a null is_active count as active.
func (r *PostgresProfileRepository) ListActiveByOrg(orgID string) ([]domain.Profile, error) {
	query := `
		SELECT id, org_id, full_name, role, is_active, manager_id
		FROM profiles
		WHERE org_id = $1 AND is_active IS NOT FALSE
		ORDER BY role ASC, full_name ASC
	`
	rows, err := r.db.Query(query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetByID retrieves a profile by ID
func (r *PostgresProfileRepository) GetByID(id string) (*domain.Profile, error) {
	query := `
		SELECT id, org_id, full_name, role, is_active, manager_id
		FROM profiles
		WHERE id = $1
	`
	p, err := scanProfile(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile not found")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	var fullName, managerID sql.NullString
	var isActive sql.NullBool
	var role string

	if err := row.Scan(&p.ID, &p.OrgID, &fullName, &role, &isActive, &managerID); err != nil {
		return nil, err
	}
	p.Role = domain.Role(role)
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if isActive.Valid {
		p.IsActive = &isActive.Bool
	}
	if managerID.Valid {
		p.ManagerID = &managerID.String
	}
	return p, nil
}
