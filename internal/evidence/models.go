package evidence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"annexops/internal/manifest"
)

// Item is one piece of supporting evidence attached to a version: a test
// report, dataset card, audit log extract. FileChecksum is present when an
// upload carried one; otherwise IndexChecksum derives a stable fallback from
// the item's metadata.
type Item struct {
	ID           uuid.UUID `json:"id"`
	VersionID    uuid.UUID `json:"version_id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	FileURI      *string   `json:"file_uri"`
	FileChecksum *string   `json:"file_checksum"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// IndexChecksum returns the checksum recorded for the item's file, or a
// SHA-256 over the canonical JSON of its identifying metadata when no file
// checksum exists. The fallback is deterministic so re-exports reproduce it.
func (i Item) IndexChecksum() string {
	if i.FileChecksum != nil && *i.FileChecksum != "" {
		return *i.FileChecksum
	}
	meta, err := json.Marshal(map[string]string{
		"id":    i.ID.String(),
		"title": i.Title,
		"type":  i.Type,
	})
	if err != nil {
		// map[string]string cannot fail to marshal
		return ""
	}
	canonical, err := manifest.NormalizeJSON(meta)
	if err != nil {
		return manifest.SHA256Hex(meta)
	}
	return manifest.SHA256Hex(canonical)
}

// IndexItems maps evidence items into the manifest's index form, preserving
// input order.
func IndexItems(items []*Item) []manifest.EvidenceIndexItem {
	out := make([]manifest.EvidenceIndexItem, 0, len(items))
	for _, item := range items {
		out = append(out, manifest.EvidenceIndexItem{
			ID:       item.ID.String(),
			Title:    item.Title,
			Type:     item.Type,
			Checksum: item.IndexChecksum(),
		})
	}
	return out
}
