package system

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "annexops/pkg/domain-errors"
)

// System is the AI system identity record that documentation versions hang
// off. Tenant scoping flows through OrgID: every lookup is org-scoped and a
// miss is always reported as not-found, never as forbidden.
type System struct {
	ID              uuid.UUID `json:"id"`
	OrgID           uuid.UUID `json:"org_id"`
	Name            string    `json:"name"`
	IntendedPurpose string    `json:"intended_purpose"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func New(id, orgID uuid.UUID, name, intendedPurpose string, now time.Time) (*System, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "system name cannot be empty")
	}
	if len(name) > 256 {
		return nil, dErrors.New(dErrors.CodeValidation, "system name must be 256 characters or less")
	}
	if orgID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "org_id is required")
	}
	return &System{
		ID:              id,
		OrgID:           orgID,
		Name:            name,
		IntendedPurpose: intendedPurpose,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
