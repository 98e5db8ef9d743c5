package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the documentation engine.
const (
	ActionVersionCreate       = "version.create"
	ActionVersionStatusChange = "version.status_change"
	ActionSectionUpdate       = "section.update"
	ActionExportCreate        = "export.create"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time      `json:"timestamp"`
	OrgID      uuid.UUID      `json:"org_id"`
	UserID     uuid.UUID      `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Detail     map[string]any `json:"detail,omitempty"`
}
