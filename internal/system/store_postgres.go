package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists systems in PostgreSQL via database/sql (lib/pq).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, sys *System) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_systems (id, org_id, name, intended_purpose, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sys.ID, sys.OrgID, sys.Name, sys.IntendedPurpose, sys.CreatedAt, sys.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert system: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByOrgAndID(ctx context.Context, orgID, id uuid.UUID) (*System, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, intended_purpose, created_at, updated_at
		FROM ai_systems
		WHERE id = $1 AND org_id = $2`,
		id, orgID,
	)
	return scanSystem(row)
}

func (s *PostgresStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*System, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, name, intended_purpose, created_at, updated_at
		FROM ai_systems
		WHERE org_id = $1
		ORDER BY created_at`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	defer rows.Close()

	var out []*System
	for rows.Next() {
		sys, err := scanSystem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sys)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSystem(row rowScanner) (*System, error) {
	var sys System
	err := row.Scan(&sys.ID, &sys.OrgID, &sys.Name, &sys.IntendedPurpose, &sys.CreatedAt, &sys.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan system: %w", err)
	}
	return &sys, nil
}
