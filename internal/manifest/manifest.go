// Package manifest builds the canonical snapshot representation of a
// documentation version and computes its content hash. The hash is both the
// content address of an export bundle and the reproducibility fingerprint
// auditors recompute independently, so construction must be deterministic
// given identical underlying data.
package manifest

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ManifestVersion identifies the snapshot format; bump on breaking changes to
// the canonical structure.
const ManifestVersion = "1.0"

// OrgInfo is the tenant identity embedded in a manifest.
type OrgInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SystemInfo is the AI system identity embedded in a manifest.
type SystemInfo struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	IntendedPurpose string    `json:"intended_purpose"`
}

// VersionInfo is the version identity embedded in a manifest.
type VersionInfo struct {
	ID          uuid.UUID `json:"id"`
	Label       string    `json:"label"`
	Status      string    `json:"status"`
	ReleaseDate *string   `json:"release_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SectionData is one documentation section's content snapshot.
type SectionData struct {
	Key          string         `json:"key"`
	Content      map[string]any `json:"content"`
	EvidenceRefs []string       `json:"evidence_refs"`
}

// EvidenceIndexItem summarizes one evidence item for the export bundle.
type EvidenceIndexItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Checksum string `json:"checksum"`
}

// Manifest is the display projection of a version snapshot. GeneratedAt is
// informational only and never feeds the hash; see CanonicalJSON.
type Manifest struct {
	ManifestVersion string              `json:"manifest_version"`
	GeneratedAt     time.Time           `json:"generated_at"`
	SnapshotHash    string              `json:"snapshot_hash,omitempty"`
	Org             OrgInfo             `json:"org"`
	System          SystemInfo          `json:"system"`
	Version         VersionInfo         `json:"version"`
	Sections        []SectionData       `json:"sections"`
	EvidenceIndex   []EvidenceIndexItem `json:"evidence_index"`
}

// Build assembles a manifest from fully-loaded state. Sections are ordered
// lexicographically by key regardless of input order, and evidence refs are
// deduplicated and sorted, so upstream iteration order can never change the
// hash. The evidence index is included as provided by the evidence
// collaborator.
func Build(org OrgInfo, system SystemInfo, version VersionInfo, sections []SectionData, evidenceIndex []EvidenceIndexItem) Manifest {
	ordered := make([]SectionData, len(sections))
	for i, s := range sections {
		ordered[i] = SectionData{
			Key:          s.Key,
			Content:      s.Content,
			EvidenceRefs: normalizeRefs(s.EvidenceRefs),
		}
		if ordered[i].Content == nil {
			ordered[i].Content = map[string]any{}
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Key < ordered[j].Key })

	index := make([]EvidenceIndexItem, len(evidenceIndex))
	copy(index, evidenceIndex)

	return Manifest{
		ManifestVersion: ManifestVersion,
		GeneratedAt:     time.Now().UTC(),
		Org:             org,
		System:          system,
		Version:         version,
		Sections:        ordered,
		EvidenceIndex:   index,
	}
}

// Finalize returns a copy of m with SnapshotHash populated.
func Finalize(m Manifest) (Manifest, error) {
	hash, err := Hash(m)
	if err != nil {
		return Manifest{}, err
	}
	m.SnapshotHash = hash
	return m, nil
}

func normalizeRefs(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
