package version

import (
	"context"
	"time"

	"github.com/google/uuid"

	"annexops/internal/workflow"
	dErrors "annexops/pkg/domain-errors"
)

// Store-level sentinels shared by the memory and Postgres implementations.
var (
	ErrNotFound       = dErrors.New(dErrors.CodeNotFound, "version not found")
	ErrDuplicateLabel = dErrors.New(dErrors.CodeConflict, "version label already exists for this system")
)

// Store persists documentation versions.
type Store interface {
	// CreateIfLabelAvailable inserts v unless the (system, label) pair is
	// taken, in which case it returns ErrDuplicateLabel.
	CreateIfLabelAvailable(ctx context.Context, v *Version) error
	FindByID(ctx context.Context, id uuid.UUID) (*Version, error)
	ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*Version, error)
	// UpdateStatus persists a workflow transition together with the approval
	// stamp when the target status is approved.
	UpdateStatus(ctx context.Context, id uuid.UUID, status workflow.Status, approvedBy *uuid.UUID, approvedAt *time.Time, now time.Time) error
	// SetSnapshotHash records the hash of the latest export. It deliberately
	// does not touch UpdatedAt: exporting is not an edit.
	SetSnapshotHash(ctx context.Context, id uuid.UUID, hash string) error
	// Delete removes a version and cascades to its sections.
	Delete(ctx context.Context, id uuid.UUID) error
}
