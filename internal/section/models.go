package section

import (
	"time"

	"github.com/google/uuid"
)

// Section is the editable content of one Annex IV section within a version.
// CompletenessScore is a cache recomputed on every write; the completeness
// engine remains the source of truth.
type Section struct {
	ID                uuid.UUID      `json:"id"`
	VersionID         uuid.UUID      `json:"version_id"`
	SectionKey        string         `json:"section_key"`
	Content           map[string]any `json:"content"`
	EvidenceRefs      []string       `json:"evidence_refs"`
	CompletenessScore float64        `json:"completeness_score"`
	LLMAssisted       bool           `json:"llm_assisted"`
	LastEditedBy      *uuid.UUID     `json:"last_edited_by"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
