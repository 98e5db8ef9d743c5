package completeness

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"annexops/internal/schema"
)

func fullGeneralContent() map[string]any {
	return map[string]any{
		"provider_name":               "Acme Corp",
		"provider_address":            "1 Main St",
		"system_name":                 "ScreenerAI",
		"system_version":              "2.1.0",
		"conformity_declaration_date": "2026-01-15",
	}
}

func TestSectionScoreCountsFilledRequiredFields(t *testing.T) {
	content := map[string]any{
		"provider_name":    "Acme Corp",
		"provider_address": "",      // empty string is unfilled
		"system_name":      nil,     // nil is unfilled
		"system_version":   []any{}, // empty list is unfilled
		// conformity_declaration_date absent
	}
	assert.Equal(t, 20.0, SectionScore("ANNEX4.GENERAL", content))
	assert.Equal(t, 100.0, SectionScore("ANNEX4.GENERAL", fullGeneralContent()))
	assert.Equal(t, 0.0, SectionScore("ANNEX4.GENERAL", nil))
}

func TestSectionScoreRoundsToTwoDecimals(t *testing.T) {
	// HUMAN_OVERSIGHT has 4 required fields: 1/3 are not reachable, but 1/4=25.
	// INTENDED_PURPOSE also has 4; DATA_GOVERNANCE has 6 so 1/6 rounds.
	content := map[string]any{"training_data_sources": "public corpora"}
	assert.Equal(t, 16.67, SectionScore("ANNEX4.DATA_GOVERNANCE", content))
}

func TestSectionScoreZeroRequiredFieldsIsComplete(t *testing.T) {
	assert.Equal(t, 100.0, SectionScore("ANNEX4.UNKNOWN_SECTION", nil))
}

func TestSectionScoreIgnoresExtraneousFields(t *testing.T) {
	content := map[string]any{"not_a_required_field": "value"}
	assert.Equal(t, 0.0, SectionScore("ANNEX4.GENERAL", content))
}

func TestOverallScoreUsesFullRegistryDenominator(t *testing.T) {
	// Only GENERAL (weight 5) fully filled, everything else absent:
	// 100*5 / 100 = 5.0, not 100.
	sections := map[string]map[string]any{
		"ANNEX4.GENERAL": fullGeneralContent(),
	}
	expected := 100.0 * schema.Weight("ANNEX4.GENERAL") / schema.TotalWeight()
	assert.InDelta(t, expected, OverallScore(sections), 0.005)
	assert.Equal(t, 5.0, OverallScore(sections))
}

func TestOverallScoreEmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, OverallScore(nil))
}

func TestFillingFieldNeverDecreasesScore(t *testing.T) {
	content := map[string]any{}
	previous := SectionScore("ANNEX4.RISK_MANAGEMENT", content)
	for _, field := range schema.RequiredFields("ANNEX4.RISK_MANAGEMENT") {
		content[field] = "documented"
		score := SectionScore("ANNEX4.RISK_MANAGEMENT", content)
		assert.GreaterOrEqual(t, score, previous)
		previous = score
	}
	assert.Equal(t, 100.0, previous)
}

func TestAddingSectionNeverDecreasesOverall(t *testing.T) {
	sections := map[string]map[string]any{
		"ANNEX4.GENERAL": fullGeneralContent(),
	}
	before := OverallScore(sections)
	sections["ANNEX4.RISK_MANAGEMENT"] = map[string]any{
		"identified_risks": "bias in screening",
	}
	assert.GreaterOrEqual(t, OverallScore(sections), before)
}

func TestZeroWeightSectionIrrelevance(t *testing.T) {
	sections := map[string]map[string]any{
		"ANNEX4.GENERAL": fullGeneralContent(),
	}
	before := OverallScore(sections)

	// CHANGE_MANAGEMENT carries weight 0: completely empty or fully filled,
	// the overall score must not move.
	sections["ANNEX4.CHANGE_MANAGEMENT"] = map[string]any{}
	assert.Equal(t, before, OverallScore(sections))

	sections["ANNEX4.CHANGE_MANAGEMENT"] = map[string]any{
		"change_management_process":   "documented",
		"version_control_procedures":  "git",
		"update_notification_process": "release notes",
		"regression_testing_approach": "CI suite",
	}
	assert.Equal(t, before, OverallScore(sections))
}

func TestDetectGapsReportsMissingFieldsAndEvidence(t *testing.T) {
	input := SectionInput{
		Key: "ANNEX4.HUMAN_OVERSIGHT",
		Content: map[string]any{
			"oversight_measures": "human review of all rejections",
		},
	}
	fieldCompletion, descriptions, gaps := DetectGaps(input)

	assert.True(t, fieldCompletion["oversight_measures"])
	assert.False(t, fieldCompletion["human_review_process"])
	assert.Len(t, descriptions, 4) // 3 missing fields + no evidence
	assert.Len(t, gaps, 4)

	var noEvidence int
	for _, g := range gaps {
		if g.GapType == GapNoEvidence {
			noEvidence++
		}
	}
	assert.Equal(t, 1, noEvidence)
}

func TestDetectGapsEvidenceSatisfied(t *testing.T) {
	input := SectionInput{
		Key:          "ANNEX4.CHANGE_MANAGEMENT",
		Content:      map[string]any{},
		EvidenceRefs: []string{"ev-1"},
	}
	_, _, gaps := DetectGaps(input)
	for _, g := range gaps {
		assert.NotEqual(t, GapNoEvidence, g.GapType)
	}
}

func TestBuildReportAggregatesGaps(t *testing.T) {
	versionID := uuid.New()
	report := BuildReport(versionID, []SectionInput{
		{Key: "ANNEX4.GENERAL", Content: fullGeneralContent(), EvidenceRefs: []string{"ev-1"}},
		{Key: "ANNEX4.POST_MARKET_MONITORING", Content: map[string]any{}},
	})

	assert.Equal(t, versionID, report.VersionID)
	assert.Len(t, report.Sections, 2)
	assert.Equal(t, "General Information", report.Sections[0].Title)
	assert.Equal(t, 100.0, report.Sections[0].Score)
	assert.Empty(t, report.Sections[0].Gaps)

	// 4 required fields missing + no evidence on the second section.
	assert.Len(t, report.Gaps, 5)
	assert.Equal(t, 5.0, report.OverallScore)
}
