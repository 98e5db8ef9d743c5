package section

import (
	"context"
	"time"

	"github.com/google/uuid"

	dErrors "annexops/pkg/domain-errors"
)

var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "section not found")

// Store persists section rows. Exactly one row exists per
// (version, section key) pair once the version has been listed.
type Store interface {
	// CreateIfAbsent inserts sec unless a row for its (version, key) pair
	// already exists. Concurrent first-listers must converge on one row.
	CreateIfAbsent(ctx context.Context, sec *Section) error
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*Section, error)
	FindByVersionAndKey(ctx context.Context, versionID uuid.UUID, key string) (*Section, error)
	// UpdateContent replaces content, refs and the cached score in one write.
	UpdateContent(ctx context.Context, id uuid.UUID, content map[string]any, evidenceRefs []string, score float64, llmAssisted bool, editedBy uuid.UUID, now time.Time) error
	DeleteByVersion(ctx context.Context, versionID uuid.UUID) error
}
