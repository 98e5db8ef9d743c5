package handler

import (
	"annexops/internal/version"
	"annexops/internal/workflow"
	dErrors "annexops/pkg/domain-errors"
)

type createRequest struct {
	Label string  `json:"label"`
	Notes *string `json:"notes"`
}

func (r createRequest) Validate() error {
	return version.ValidateLabel(r.Label)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (r statusRequest) Validate() error {
	if !workflow.Status(r.Status).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown status: "+r.Status)
	}
	return nil
}
