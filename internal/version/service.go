package version

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"annexops/internal/audit"
	"annexops/internal/diff"
	"annexops/internal/system"
	"annexops/internal/workflow"
	dErrors "annexops/pkg/domain-errors"
	"annexops/pkg/requestcontext"
)

// SectionAccess is the slice of the section service this package needs:
// content for the diff operation and cleanup when a version is deleted. The
// section service implements it; the narrow interface keeps the dependency
// one-way.
type SectionAccess interface {
	ContentByVersion(ctx context.Context, versionID uuid.UUID) (map[string]map[string]any, error)
	DeleteByVersion(ctx context.Context, versionID uuid.UUID) error
}

// EvidencePurger removes a version's evidence items when the version goes
// away. The evidence store implements it.
type EvidencePurger interface {
	DeleteByVersion(ctx context.Context, versionID uuid.UUID) error
}

// Service owns version lifecycle: creation, workflow transitions and diffs.
// All lookups are tenant-scoped through the owning system; a miss in another
// org reads as not found, never forbidden.
type Service struct {
	versions Store
	systems  system.Store
	sections SectionAccess
	evidence EvidencePurger
	logger   *slog.Logger
	audit    *audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func NewService(versions Store, systems system.Store, sections SectionAccess, evidence EvidencePurger, opts ...Option) *Service {
	s := &Service{
		versions: versions,
		systems:  systems,
		sections: sections,
		evidence: evidence,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new version in draft.
func (s *Service) Create(ctx context.Context, orgID, systemID uuid.UUID, label string, notes *string, createdBy uuid.UUID) (*Version, error) {
	if _, err := s.systems.FindByOrgAndID(ctx, orgID, systemID); err != nil {
		return nil, err
	}

	v, err := New(uuid.New(), systemID, label, notes, createdBy, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.versions.CreateIfLabelAvailable(ctx, v); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		OrgID:      orgID,
		UserID:     createdBy,
		Action:     audit.ActionVersionCreate,
		EntityType: "version",
		EntityID:   v.ID,
		Detail:     map[string]any{"label": v.Label, "system_id": systemID.String()},
	})
	return v, nil
}

// Get returns a version after confirming its system belongs to the org.
func (s *Service) Get(ctx context.Context, orgID, versionID uuid.UUID) (*Version, error) {
	v, err := s.versions.FindByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.systems.FindByOrgAndID(ctx, orgID, v.SystemID); err != nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, orgID, systemID uuid.UUID) ([]*Version, error) {
	if _, err := s.systems.FindByOrgAndID(ctx, orgID, systemID); err != nil {
		return nil, err
	}
	return s.versions.ListBySystem(ctx, systemID)
}

// ChangeStatus applies a workflow transition. Approval stamps who approved
// and when; leaving approved is never allowed.
func (s *Service) ChangeStatus(ctx context.Context, orgID, versionID uuid.UUID, target workflow.Status, actor uuid.UUID) (*Version, error) {
	v, err := s.Get(ctx, orgID, versionID)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateTransition(v.Status, target); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	approvedBy := v.ApprovedBy
	approvedAt := v.ApprovedAt
	if target == workflow.StatusApproved {
		approvedBy = &actor
		approvedAt = &now
	}
	if err := s.versions.UpdateStatus(ctx, versionID, target, approvedBy, approvedAt, now); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		OrgID:      orgID,
		UserID:     actor,
		Action:     audit.ActionVersionStatusChange,
		EntityType: "version",
		EntityID:   versionID,
		Detail:     map[string]any{"from": string(v.Status), "to": string(target)},
	})

	updated := *v
	updated.Status = target
	updated.ApprovedBy = approvedBy
	updated.ApprovedAt = approvedAt
	updated.UpdatedAt = now
	return &updated, nil
}

// Diff compares two versions of the same system, including section content.
func (s *Service) Diff(ctx context.Context, orgID, fromID, toID uuid.UUID) (*diff.Result, error) {
	from, err := s.Get(ctx, orgID, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.Get(ctx, orgID, toID)
	if err != nil {
		return nil, err
	}
	if from.SystemID != to.SystemID {
		return nil, dErrors.New(dErrors.CodeValidation, "versions belong to different systems")
	}

	fromFields, err := s.diffFields(ctx, from)
	if err != nil {
		return nil, err
	}
	toFields, err := s.diffFields(ctx, to)
	if err != nil {
		return nil, err
	}

	result := diff.Diff(*fromFields, *toFields)
	return &result, nil
}

// Delete removes a draft or review version together with its sections and
// evidence items. Approved versions are retained for audit.
func (s *Service) Delete(ctx context.Context, orgID, versionID uuid.UUID) error {
	v, err := s.Get(ctx, orgID, versionID)
	if err != nil {
		return err
	}
	if v.Status == workflow.StatusApproved {
		return dErrors.New(dErrors.CodeConflict, "approved versions cannot be deleted")
	}
	if err := s.versions.Delete(ctx, versionID); err != nil {
		return err
	}
	// Postgres cascades via foreign keys, making these no-ops there; the
	// memory stores rely on them.
	if err := s.sections.DeleteByVersion(ctx, versionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete version sections")
	}
	if err := s.evidence.DeleteByVersion(ctx, versionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete version evidence")
	}
	return nil
}

func (s *Service) diffFields(ctx context.Context, v *Version) (*diff.VersionFields, error) {
	sections, err := s.sections.ContentByVersion(ctx, v.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load sections for diff")
	}
	return &diff.VersionFields{
		Label:       v.Label,
		Status:      string(v.Status),
		Notes:       v.Notes,
		ReleaseDate: v.ReleaseDate,
		Sections:    sections,
	}, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"log_type", "audit",
			"action", event.Action,
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "audit event",
		"log_type", "audit",
		"action", event.Action,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
