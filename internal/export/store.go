package export

import (
	"context"

	"github.com/google/uuid"

	dErrors "annexops/pkg/domain-errors"
)

var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "export not found")

// Store persists export records. Records are append-only; there is no update
// because exports are immutable once written.
type Store interface {
	Create(ctx context.Context, e *Export) error
	FindByID(ctx context.Context, id uuid.UUID) (*Export, error)
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*Export, error)
}
