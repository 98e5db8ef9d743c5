package version

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"annexops/internal/workflow"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore persists versions in PostgreSQL. Label uniqueness per system
// is enforced by a unique index so concurrent creates race safely.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfLabelAvailable(ctx context.Context, v *Version) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_versions
			(id, system_id, label, status, notes, release_date, snapshot_hash,
			 created_by, approved_by, approved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		v.ID, v.SystemID, v.Label, string(v.Status), v.Notes, v.ReleaseDate, v.SnapshotHash,
		v.CreatedBy, v.ApprovedBy, v.ApprovedAt, v.CreatedAt, v.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return ErrDuplicateLabel
	}
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Version, error) {
	row := s.db.QueryRowContext(ctx, selectVersion+` WHERE id = $1`, id)
	return scanVersion(row)
}

func (s *PostgresStore) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*Version, error) {
	rows, err := s.db.QueryContext(ctx, selectVersion+` WHERE system_id = $1 ORDER BY created_at`, systemID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []*Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status workflow.Status, approvedBy *uuid.UUID, approvedAt *time.Time, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE system_versions
		SET status = $2, approved_by = $3, approved_at = $4, updated_at = $5
		WHERE id = $1`,
		id, string(status), approvedBy, approvedAt, now,
	)
	if err != nil {
		return fmt.Errorf("update version status: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetSnapshotHash(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE system_versions SET snapshot_hash = $2 WHERE id = $1`,
		id, hash,
	)
	if err != nil {
		return fmt.Errorf("set snapshot hash: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	// Sections cascade via the annex_sections foreign key.
	res, err := s.db.ExecContext(ctx, `DELETE FROM system_versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	return requireRow(res)
}

const selectVersion = `
	SELECT id, system_id, label, status, notes, release_date, snapshot_hash,
	       created_by, approved_by, approved_at, created_at, updated_at
	FROM system_versions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*Version, error) {
	var v Version
	var status string
	err := row.Scan(
		&v.ID, &v.SystemID, &v.Label, &status, &v.Notes, &v.ReleaseDate, &v.SnapshotHash,
		&v.CreatedBy, &v.ApprovedBy, &v.ApprovedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan version: %w", err)
	}
	v.Status = workflow.Status(status)
	return &v, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
