package version

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"annexops/internal/workflow"
	dErrors "annexops/pkg/domain-errors"
)

// labelPattern constrains version labels: alphanumeric plus dots, dashes,
// underscores, 1-50 characters.
var labelPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,50}$`)

// Version is one documentation version of an AI system.
//
// Invariants:
//   - Label matches labelPattern and is unique within its owning system
//   - Status transitions follow the workflow package rules
//   - SnapshotHash is set by export, never by editing
//   - Once approved, section content is frozen for audit purposes; the
//     gating lives in the section service, not at the storage layer
type Version struct {
	ID           uuid.UUID       `json:"id"`
	SystemID     uuid.UUID       `json:"system_id"`
	Label        string          `json:"label"`
	Status       workflow.Status `json:"status"`
	Notes        *string         `json:"notes"`
	ReleaseDate  *string         `json:"release_date"`
	SnapshotHash *string         `json:"snapshot_hash"`
	CreatedBy    uuid.UUID       `json:"created_by"`
	ApprovedBy   *uuid.UUID      `json:"approved_by"`
	ApprovedAt   *time.Time      `json:"approved_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func New(id, systemID uuid.UUID, label string, notes *string, createdBy uuid.UUID, now time.Time) (*Version, error) {
	if err := ValidateLabel(label); err != nil {
		return nil, err
	}
	return &Version{
		ID:        id,
		SystemID:  systemID,
		Label:     label,
		Status:    workflow.StatusDraft,
		Notes:     notes,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateLabel checks the label format before any store round trip.
func ValidateLabel(label string) error {
	if !labelPattern.MatchString(label) {
		return dErrors.New(dErrors.CodeValidation,
			"version label must be 1-50 characters and contain only alphanumeric characters, dots, dashes, and underscores")
	}
	return nil
}
