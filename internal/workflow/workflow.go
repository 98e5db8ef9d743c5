// Package workflow is the documentation version life-cycle state machine.
// It is a pure decision function: callers persist the new status and record
// the audit fact.
package workflow

import (
	dErrors "annexops/pkg/domain-errors"
)

// Status is the life-cycle stage of a documentation version.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusApproved:
		return true
	}
	return false
}

// IsTerminal reports whether s admits no further transitions. Approved is
// terminal: section content is frozen for audit purposes from then on.
func (s Status) IsTerminal() bool {
	return s == StatusApproved
}

// validTransitions maps current status to allowed next statuses.
// review -> draft is the send-back path; draft -> approved is never allowed.
var validTransitions = map[Status][]Status{
	StatusDraft:    {StatusReview},
	StatusReview:   {StatusApproved, StatusDraft},
	StatusApproved: {},
}

// IsValidTransition reports whether from -> to is an allowed transition.
func IsValidTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from the given status.
func AllowedTransitions(from Status) []Status {
	allowed := validTransitions[from]
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}

// ValidateTransition returns a typed error naming both statuses when the
// transition is not allowed.
func ValidateTransition(from, to Status) error {
	if !to.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown status %q", string(to))
	}
	if !IsValidTransition(from, to) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"invalid status transition from %q to %q", string(from), string(to))
	}
	return nil
}
