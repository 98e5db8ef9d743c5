package evidence

import (
	"context"

	"github.com/google/uuid"

	dErrors "annexops/pkg/domain-errors"
)

var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "evidence item not found")

// Store persists evidence items. The export engine reads the full list for a
// version; ordering is stable (creation time, then id) so the manifest's
// evidence index is deterministic.
type Store interface {
	Add(ctx context.Context, item *Item) error
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByVersion removes every item owned by a version. Deleting a
	// version cascades here; zero items is not an error.
	DeleteByVersion(ctx context.Context, versionID uuid.UUID) error
}
