// Package completeness computes weighted documentation completeness from
// section content and the schema registry. Everything here is pure: the
// export engine depends on these results being reproducible.
package completeness

import (
	"math"

	"annexops/internal/schema"
)

// FieldFilled reports whether a required field value counts as filled.
// Absent keys, nil, empty strings, and empty lists are unfilled; everything
// else (including zero numbers and false) counts.
func FieldFilled(content map[string]any, field string) bool {
	value, ok := content[field]
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	default:
		return true
	}
}

// SectionScore returns the percentage of required fields filled for a
// section, rounded to 2 decimals. A section with zero required fields scores
// 100.
func SectionScore(sectionKey string, content map[string]any) float64 {
	required := schema.RequiredFields(sectionKey)
	if len(required) == 0 {
		return 100.0
	}

	filled := 0
	for _, field := range required {
		if FieldFilled(content, field) {
			filled++
		}
	}
	return round2(float64(filled) / float64(len(required)) * 100)
}

// OverallScore returns the weighted average completeness across the whole
// registry. The denominator is the sum of ALL registry weights: sections
// absent from the map contribute zero to the numerator but their weight
// still counts, so a missing section pulls the average down.
func OverallScore(sections map[string]map[string]any) float64 {
	totalWeight := schema.TotalWeight()
	if totalWeight == 0 {
		return 0.0
	}

	var totalScore float64
	for _, key := range schema.Keys() {
		content, ok := sections[key]
		if !ok {
			continue
		}
		totalScore += SectionScore(key, content) * schema.Weight(key)
	}
	return round2(totalScore / totalWeight)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
