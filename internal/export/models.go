package export

import (
	"time"

	"github.com/google/uuid"
)

// Export types recorded on the bundle.
const (
	TypeFull = "full"
	TypeDiff = "diff"
)

// Export is the immutable record of one generated bundle. Re-exporting the
// same unmodified version produces a new record with a new storage URI but an
// identical SnapshotHash.
type Export struct {
	ID                uuid.UUID  `json:"id"`
	VersionID         uuid.UUID  `json:"version_id"`
	ExportType        string     `json:"export_type"`
	SnapshotHash      string     `json:"snapshot_hash"`
	StorageURI        string     `json:"storage_uri"`
	FileSize          int64      `json:"file_size"`
	IncludeDiff       bool       `json:"include_diff"`
	CompareVersionID  *uuid.UUID `json:"compare_version_id"`
	CompletenessScore float64    `json:"completeness_score"`
	CreatedBy         uuid.UUID  `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
