// Package diff compares two documentation versions over a flattened view of
// version-level fields and section content. Comparison happens on underlying
// typed values so equivalent representations are never spuriously flagged;
// stringification is for display only.
package diff

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// VersionFields is the comparable subset of a version record. Section content
// is flattened under "sections.<key>.<field>".
type VersionFields struct {
	Label       string
	Status      string
	Notes       *string
	ReleaseDate *string
	Sections    map[string]map[string]any
}

// Change is one field-level difference, labeled from -> to.
type Change struct {
	Field    string  `json:"field"`
	OldValue *string `json:"old_value"`
	NewValue *string `json:"new_value"`
}

// Result carries the change list plus summary counts.
type Result struct {
	Added    int      `json:"added"`
	Removed  int      `json:"removed"`
	Modified int      `json:"modified"`
	Changes  []Change `json:"changes"`
}

// Diff computes the differences between two versions. A field present only
// in to counts as added, present only in from as removed, present in both
// with different values as modified. Changes are ordered by field path so
// output is deterministic.
func Diff(from, to VersionFields) Result {
	fromFlat := flatten(from)
	toFlat := flatten(to)

	paths := make(map[string]struct{}, len(fromFlat)+len(toFlat))
	for p := range fromFlat {
		paths[p] = struct{}{}
	}
	for p := range toFlat {
		paths[p] = struct{}{}
	}

	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var result Result
	for _, path := range ordered {
		oldVal, inFrom := fromFlat[path]
		newVal, inTo := toFlat[path]

		switch {
		case !inFrom:
			result.Added++
		case !inTo:
			result.Removed++
		case equalValues(oldVal, newVal):
			continue
		default:
			result.Modified++
		}

		change := Change{Field: path}
		if inFrom {
			change.OldValue = stringify(oldVal)
		}
		if inTo {
			change.NewValue = stringify(newVal)
		}
		result.Changes = append(result.Changes, change)
	}

	return result
}

// flatten produces path -> typed value for every comparable field. Nil
// pointers mean the field is absent from the flattened view.
func flatten(v VersionFields) map[string]any {
	flat := map[string]any{
		"label":  v.Label,
		"status": v.Status,
	}
	if v.Notes != nil {
		flat["notes"] = *v.Notes
	}
	if v.ReleaseDate != nil {
		flat["release_date"] = *v.ReleaseDate
	}
	for key, content := range v.Sections {
		for field, value := range content {
			flat[fmt.Sprintf("sections.%s.%s", key, field)] = value
		}
	}
	return flat
}

// equalValues compares via a JSON round trip so that typed values with
// equivalent representations (int vs float64 from decoding, []string vs
// []any) do not show up as changes.
func equalValues(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	aj, aerr := json.Marshal(a)
	bj, berr := json.Marshal(b)
	if aerr != nil || berr != nil {
		return false
	}
	return string(aj) == string(bj)
}

func stringify(v any) *string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			s = fmt.Sprintf("%v", val)
		} else {
			s = string(raw)
		}
	}
	return &s
}
