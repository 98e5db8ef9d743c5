package completeness

import (
	"fmt"

	"github.com/google/uuid"

	"annexops/internal/schema"
)

// Gap types surfaced in completeness reports.
const (
	GapRequiredField = "required_field"
	GapNoEvidence    = "no_evidence"
)

// SectionInput is the slice of section state the engine needs; callers map
// their storage models into it so this package stays dependency-free.
type SectionInput struct {
	Key          string
	Content      map[string]any
	EvidenceRefs []string
}

// Gap is one actionable completeness finding.
type Gap struct {
	SectionKey  string `json:"section_key"`
	GapType     string `json:"gap_type"`
	Description string `json:"description"`
}

// SectionReport holds per-section completeness detail.
type SectionReport struct {
	SectionKey      string          `json:"section_key"`
	Title           string          `json:"title"`
	Score           float64         `json:"score"`
	FieldCompletion map[string]bool `json:"field_completion"`
	EvidenceCount   int             `json:"evidence_count"`
	Gaps            []string        `json:"gaps"`
}

// Report is the full completeness dashboard for a version.
type Report struct {
	VersionID    uuid.UUID       `json:"version_id"`
	OverallScore float64         `json:"overall_score"`
	Sections     []SectionReport `json:"sections"`
	Gaps         []Gap           `json:"gaps"`
}

// DetectGaps returns the field completion map, human-readable gap
// descriptions, and typed gap items for one section.
func DetectGaps(input SectionInput) (map[string]bool, []string, []Gap) {
	required := schema.RequiredFields(input.Key)
	if len(required) == 0 && !schema.IsRegistered(input.Key) {
		return map[string]bool{}, nil, nil
	}

	fieldCompletion := make(map[string]bool, len(required))
	var descriptions []string
	var gaps []Gap

	for _, field := range required {
		filled := FieldFilled(input.Content, field)
		fieldCompletion[field] = filled
		if !filled {
			description := fmt.Sprintf("Missing required field: %s", field)
			descriptions = append(descriptions, description)
			gaps = append(gaps, Gap{
				SectionKey:  input.Key,
				GapType:     GapRequiredField,
				Description: description,
			})
		}
	}

	if len(input.EvidenceRefs) == 0 {
		description := "No evidence items mapped to this section"
		descriptions = append(descriptions, description)
		gaps = append(gaps, Gap{
			SectionKey:  input.Key,
			GapType:     GapNoEvidence,
			Description: description,
		})
	}

	return fieldCompletion, descriptions, gaps
}

// BuildReport assembles the completeness dashboard for a version from its
// section state. Pure: same inputs, same report.
func BuildReport(versionID uuid.UUID, sections []SectionInput) Report {
	contents := make(map[string]map[string]any, len(sections))
	for _, s := range sections {
		contents[s.Key] = s.Content
	}

	report := Report{
		VersionID:    versionID,
		OverallScore: OverallScore(contents),
	}

	for _, s := range sections {
		fieldCompletion, descriptions, gaps := DetectGaps(s)
		report.Sections = append(report.Sections, SectionReport{
			SectionKey:      s.Key,
			Title:           schema.Title(s.Key),
			Score:           SectionScore(s.Key, s.Content),
			FieldCompletion: fieldCompletion,
			EvidenceCount:   len(s.EvidenceRefs),
			Gaps:            descriptions,
		})
		report.Gaps = append(report.Gaps, gaps...)
	}

	return report
}
