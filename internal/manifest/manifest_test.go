package manifest

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "annexops/pkg/domain-errors"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func fixtureIdentity() (OrgInfo, SystemInfo, VersionInfo) {
	org := OrgInfo{
		ID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Name: "Acme Compliance",
	}
	system := SystemInfo{
		ID:              uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Name:            "ScreenerAI",
		IntendedPurpose: "CV screening for recruitment",
	}
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	version := VersionInfo{
		ID:        uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		Label:     "v1.0",
		Status:    "review",
		CreatedAt: created,
		UpdatedAt: created,
	}
	return org, system, version
}

func fixtureSections() []SectionData {
	return []SectionData{
		{
			Key: "ANNEX4.RISK_MANAGEMENT",
			Content: map[string]any{
				"identified_risks": "bias in ranking",
				"residual_risks":   []any{"low recall on rare roles"},
			},
			EvidenceRefs: []string{"ev-2", "ev-1", "ev-2"},
		},
		{
			Key:     "ANNEX4.GENERAL",
			Content: map[string]any{"provider_name": "Acme Corp"},
		},
	}
}

func fixtureEvidence() []EvidenceIndexItem {
	return []EvidenceIndexItem{
		{ID: "ev-1", Title: "Bias audit", Type: "upload", Checksum: "aa"},
		{ID: "ev-2", Title: "Model card", Type: "link", Checksum: "bb"},
	}
}

func TestBuildOrdersSectionsByKey(t *testing.T) {
	org, system, version := fixtureIdentity()
	m := Build(org, system, version, fixtureSections(), fixtureEvidence())

	require.Len(t, m.Sections, 2)
	assert.Equal(t, "ANNEX4.GENERAL", m.Sections[0].Key)
	assert.Equal(t, "ANNEX4.RISK_MANAGEMENT", m.Sections[1].Key)
	// Evidence refs deduplicated and sorted.
	assert.Equal(t, []string{"ev-1", "ev-2"}, m.Sections[1].EvidenceRefs)
	// Evidence index kept as provided.
	assert.Equal(t, "ev-1", m.EvidenceIndex[0].ID)
}

func TestHashIsDeterministicAcrossInputOrder(t *testing.T) {
	org, system, version := fixtureIdentity()

	m1 := Build(org, system, version, fixtureSections(), fixtureEvidence())

	// Same data, reversed section order, shuffled evidence refs.
	reversed := fixtureSections()
	reversed[0], reversed[1] = reversed[1], reversed[0]
	reversed[1].EvidenceRefs = []string{"ev-1", "ev-2"}
	m2 := Build(org, system, version, reversed, fixtureEvidence())

	h1, err := Hash(m1)
	require.NoError(t, err)
	h2, err := Hash(m2)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Regexp(t, hexDigest, h1)
}

func TestHashIgnoresGeneratedAt(t *testing.T) {
	org, system, version := fixtureIdentity()
	m := Build(org, system, version, fixtureSections(), fixtureEvidence())

	h1, err := Hash(m)
	require.NoError(t, err)

	m.GeneratedAt = m.GeneratedAt.Add(48 * time.Hour)
	h2, err := Hash(m)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestHashIgnoresSnapshotHashField(t *testing.T) {
	org, system, version := fixtureIdentity()
	m := Build(org, system, version, fixtureSections(), fixtureEvidence())

	h1, err := Hash(m)
	require.NoError(t, err)

	finalized, err := Finalize(m)
	require.NoError(t, err)
	assert.Equal(t, h1, finalized.SnapshotHash)

	// Hashing the finalized manifest must reproduce the same digest.
	h2, err := Hash(finalized)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestHashChangesWithContent(t *testing.T) {
	org, system, version := fixtureIdentity()
	m1 := Build(org, system, version, fixtureSections(), fixtureEvidence())

	edited := fixtureSections()
	edited[1].Content["provider_name"] = "Other Corp"
	m2 := Build(org, system, version, edited, fixtureEvidence())

	h1, _ := Hash(m1)
	h2, _ := Hash(m2)
	assert.NotEqual(t, h1, h2)
}

func TestCanonicalJSONHasNoGeneratedAt(t *testing.T) {
	org, system, version := fixtureIdentity()
	m := Build(org, system, version, fixtureSections(), fixtureEvidence())

	canonical, err := CanonicalJSON(m)
	require.NoError(t, err)
	assert.NotContains(t, string(canonical), "generated_at")
	assert.NotContains(t, string(canonical), "snapshot_hash")
	// Compact separators, no insignificant whitespace.
	assert.NotContains(t, string(canonical), `": `)
	assert.NotContains(t, string(canonical), "\n")
}

func TestNormalizeJSONIsFixedPoint(t *testing.T) {
	raw := []byte(`{"z": 1, "a": {"y": [3, 2], "b": "x"}, "n": 1.50}`)

	first, err := NormalizeJSON(raw)
	require.NoError(t, err)
	second, err := NormalizeJSON(first)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.JSONEq(t, string(raw), string(first))
}

func TestCanonicalJSONFailsClosedOnUnserializableContent(t *testing.T) {
	org, system, version := fixtureIdentity()
	sections := []SectionData{{
		Key:     "ANNEX4.GENERAL",
		Content: map[string]any{"provider_name": make(chan int)},
	}}
	m := Build(org, system, version, sections, nil)

	_, err := CanonicalJSON(m)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeComputation))

	_, err = Hash(m)
	assert.Error(t, err)
}

func TestDisplayProjectionStillCarriesGeneratedAt(t *testing.T) {
	org, system, version := fixtureIdentity()
	m := Build(org, system, version, nil, nil)

	display, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(display), "generated_at")
}
