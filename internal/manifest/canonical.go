package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	dErrors "annexops/pkg/domain-errors"
)

// hashProjection is the hashable subset of a manifest. GeneratedAt is
// deliberately absent: two manifests built at different wall-clock times from
// identical data must hash identically. SnapshotHash is absent to avoid
// circularity. Never hash the display projection directly.
type hashProjection struct {
	ManifestVersion string              `json:"manifest_version"`
	Org             OrgInfo             `json:"org"`
	System          SystemInfo          `json:"system"`
	Version         VersionInfo         `json:"version"`
	Sections        []SectionData       `json:"sections"`
	EvidenceIndex   []EvidenceIndexItem `json:"evidence_index"`
}

// CanonicalJSON serializes the hashable projection of m in canonical form:
// all object keys sorted lexicographically at every nesting level, no
// insignificant whitespace. Serialization failures fail closed with a
// computation error rather than hashing partial data.
func CanonicalJSON(m Manifest) ([]byte, error) {
	projection := hashProjection{
		ManifestVersion: m.ManifestVersion,
		Org:             m.Org,
		System:          m.System,
		Version:         m.Version,
		Sections:        m.Sections,
		EvidenceIndex:   m.EvidenceIndex,
	}
	raw, err := json.Marshal(projection)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeComputation, "manifest cannot be canonicalized")
	}
	return NormalizeJSON(raw)
}

// NormalizeJSON rewrites a JSON document into canonical form: sorted object
// keys at every level, compact encoding. Applying it to already-canonical
// bytes is a fixed point.
func NormalizeJSON(raw []byte) ([]byte, error) {
	var tree any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber() // preserve numeric representation across round trips
	if err := decoder.Decode(&tree); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeComputation, "invalid JSON document")
	}
	// encoding/json emits map keys in sorted order and compact output, which
	// is exactly the canonical form.
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeComputation, "JSON document cannot be canonicalized")
	}
	return out, nil
}

// Hash computes the snapshot hash: lowercase-hex SHA-256 over the canonical
// byte sequence.
func Hash(m Manifest) (string, error) {
	canonical, err := CanonicalJSON(m)
	if err != nil {
		return "", err
	}
	return SHA256Hex(canonical), nil
}

// SHA256Hex returns the lowercase hex SHA-256 digest of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
