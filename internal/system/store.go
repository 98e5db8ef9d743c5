package system

import (
	"context"

	"github.com/google/uuid"

	dErrors "annexops/pkg/domain-errors"
)

// ErrNotFound keeps store-level 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "system not found")

// Store persists AI system records.
type Store interface {
	Create(ctx context.Context, s *System) error
	FindByOrgAndID(ctx context.Context, orgID, id uuid.UUID) (*System, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*System, error)
}
