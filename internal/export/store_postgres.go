package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, e *Export) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exports
			(id, version_id, export_type, snapshot_hash, storage_uri, file_size,
			 include_diff, compare_version_id, completeness_score, created_by,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.VersionID, e.ExportType, e.SnapshotHash, e.StorageURI, e.FileSize,
		e.IncludeDiff, e.CompareVersionID, e.CompletenessScore, e.CreatedBy,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Export, error) {
	row := s.db.QueryRowContext(ctx, selectExport+` WHERE id = $1`, id)
	return scanExport(row)
}

func (s *PostgresStore) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*Export, error) {
	rows, err := s.db.QueryContext(ctx, selectExport+`
		WHERE version_id = $1
		ORDER BY created_at`,
		versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []*Export
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const selectExport = `
	SELECT id, version_id, export_type, snapshot_hash, storage_uri, file_size,
	       include_diff, compare_version_id, completeness_score, created_by,
	       created_at, updated_at
	FROM exports`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExport(row rowScanner) (*Export, error) {
	var e Export
	err := row.Scan(
		&e.ID, &e.VersionID, &e.ExportType, &e.SnapshotHash, &e.StorageURI, &e.FileSize,
		&e.IncludeDiff, &e.CompareVersionID, &e.CompletenessScore, &e.CreatedBy,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan export: %w", err)
	}
	return &e, nil
}
