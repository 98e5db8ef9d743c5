package evidence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, item *Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evidence_items
			(id, version_id, title, type, file_uri, file_checksum, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.VersionID, item.Title, item.Type,
		item.FileURI, item.FileChecksum, item.CreatedBy, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert evidence item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version_id, title, type, file_uri, file_checksum, created_by, created_at
		FROM evidence_items
		WHERE version_id = $1
		ORDER BY created_at, id`,
		versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list evidence items: %w", err)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.VersionID, &item.Title, &item.Type,
			&item.FileURI, &item.FileChecksum, &item.CreatedBy, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan evidence item: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM evidence_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete evidence item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByVersion(ctx context.Context, versionID uuid.UUID) error {
	// Usually a no-op: the foreign key already cascades when the version row
	// goes away.
	_, err := s.db.ExecContext(ctx, `DELETE FROM evidence_items WHERE version_id = $1`, versionID)
	if err != nil {
		return fmt.Errorf("delete evidence items: %w", err)
	}
	return nil
}
