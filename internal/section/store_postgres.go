package section

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists sections in PostgreSQL. Content is stored as JSONB,
// evidence refs as text[]. A unique index on (version_id, section_key) backs
// CreateIfAbsent.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfAbsent(ctx context.Context, sec *Section) error {
	content, err := json.Marshal(contentOrEmpty(sec.Content))
	if err != nil {
		return fmt.Errorf("marshal section content: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO annex_sections
			(id, version_id, section_key, content, evidence_refs,
			 completeness_score, llm_assisted, last_edited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (version_id, section_key) DO NOTHING`,
		sec.ID, sec.VersionID, sec.SectionKey, content, pq.Array(refsOrEmpty(sec.EvidenceRefs)),
		sec.CompletenessScore, sec.LLMAssisted, sec.LastEditedBy, sec.CreatedAt, sec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert section: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*Section, error) {
	rows, err := s.db.QueryContext(ctx, selectSection+`
		WHERE version_id = $1
		ORDER BY section_key`,
		versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var out []*Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByVersionAndKey(ctx context.Context, versionID uuid.UUID, key string) (*Section, error) {
	row := s.db.QueryRowContext(ctx, selectSection+`
		WHERE version_id = $1 AND section_key = $2`,
		versionID, key,
	)
	return scanSection(row)
}

func (s *PostgresStore) UpdateContent(ctx context.Context, id uuid.UUID, content map[string]any, evidenceRefs []string, score float64, llmAssisted bool, editedBy uuid.UUID, now time.Time) error {
	raw, err := json.Marshal(contentOrEmpty(content))
	if err != nil {
		return fmt.Errorf("marshal section content: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE annex_sections
		SET content = $2, evidence_refs = $3, completeness_score = $4,
		    llm_assisted = $5, last_edited_by = $6, updated_at = $7
		WHERE id = $1`,
		id, raw, pq.Array(refsOrEmpty(evidenceRefs)), score, llmAssisted, editedBy, now,
	)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
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
	_, err := s.db.ExecContext(ctx, `DELETE FROM annex_sections WHERE version_id = $1`, versionID)
	if err != nil {
		return fmt.Errorf("delete sections: %w", err)
	}
	return nil
}

const selectSection = `
	SELECT id, version_id, section_key, content, evidence_refs,
	       completeness_score, llm_assisted, last_edited_by, created_at, updated_at
	FROM annex_sections`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSection(row rowScanner) (*Section, error) {
	var sec Section
	var content []byte
	err := row.Scan(
		&sec.ID, &sec.VersionID, &sec.SectionKey, &content, pq.Array(&sec.EvidenceRefs),
		&sec.CompletenessScore, &sec.LLMAssisted, &sec.LastEditedBy, &sec.CreatedAt, &sec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan section: %w", err)
	}
	if err := json.Unmarshal(content, &sec.Content); err != nil {
		return nil, fmt.Errorf("decode section content: %w", err)
	}
	return &sec, nil
}

func contentOrEmpty(content map[string]any) map[string]any {
	if content == nil {
		return map[string]any{}
	}
	return content
}

// refsOrEmpty keeps a nil slice from becoming SQL NULL in the text[] column.
func refsOrEmpty(refs []string) []string {
	if refs == nil {
		return []string{}
	}
	return refs
}
