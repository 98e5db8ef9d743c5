package section

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"annexops/internal/audit"
	"annexops/internal/completeness"
	"annexops/internal/schema"
	"annexops/internal/system"
	"annexops/internal/version"
	"annexops/internal/workflow"
	dErrors "annexops/pkg/domain-errors"
	"annexops/pkg/requestcontext"
)

// Service owns section content. Approved versions are frozen here: the store
// will happily write, the service refuses.
type Service struct {
	sections Store
	versions version.Store
	systems  system.Store
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

func NewService(sections Store, versions version.Store, systems system.Store, opts ...Option) *Service {
	s := &Service{
		sections: sections,
		versions: versions,
		systems:  systems,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListForVersion returns one section per registered key, creating empty rows
// on first access. Listing twice never duplicates rows.
func (s *Service) ListForVersion(ctx context.Context, orgID, versionID uuid.UUID) ([]*Section, error) {
	if _, err := s.resolveVersion(ctx, orgID, versionID); err != nil {
		return nil, err
	}
	if err := s.ensureRows(ctx, versionID); err != nil {
		return nil, err
	}
	return s.sections.ListByVersion(ctx, versionID)
}

// Get returns a single section, creating it first if the version has never
// been listed.
func (s *Service) Get(ctx context.Context, orgID, versionID uuid.UUID, key string) (*Section, error) {
	if !schema.IsRegistered(key) {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown section key: "+key)
	}
	if _, err := s.resolveVersion(ctx, orgID, versionID); err != nil {
		return nil, err
	}
	if err := s.ensureRows(ctx, versionID); err != nil {
		return nil, err
	}
	return s.sections.FindByVersionAndKey(ctx, versionID, key)
}

// UpdateContent replaces a section's content and recomputes its cached
// completeness score. Writes are refused once the owning version is approved.
func (s *Service) UpdateContent(ctx context.Context, orgID, versionID uuid.UUID, key string, content map[string]any, evidenceRefs []string, llmAssisted bool, editor uuid.UUID) (*Section, error) {
	if !schema.IsRegistered(key) {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown section key: "+key)
	}
	v, err := s.resolveVersion(ctx, orgID, versionID)
	if err != nil {
		return nil, err
	}
	if v.Status == workflow.StatusApproved {
		return nil, dErrors.New(dErrors.CodeConflict, "version is approved; section content is frozen")
	}
	if err := s.ensureRows(ctx, versionID); err != nil {
		return nil, err
	}
	sec, err := s.sections.FindByVersionAndKey(ctx, versionID, key)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	score := completeness.SectionScore(key, content)
	if err := s.sections.UpdateContent(ctx, sec.ID, content, evidenceRefs, score, llmAssisted, editor, now); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		OrgID:      orgID,
		UserID:     editor,
		Action:     audit.ActionSectionUpdate,
		EntityType: "section",
		EntityID:   sec.ID,
		Detail:     map[string]any{"section_key": key, "version_id": versionID.String()},
	})

	return s.sections.FindByVersionAndKey(ctx, versionID, key)
}

// Report assembles the completeness dashboard for a version.
func (s *Service) Report(ctx context.Context, orgID, versionID uuid.UUID) (*completeness.Report, error) {
	sections, err := s.ListForVersion(ctx, orgID, versionID)
	if err != nil {
		return nil, err
	}
	inputs := make([]completeness.SectionInput, 0, len(sections))
	for _, sec := range sections {
		inputs = append(inputs, completeness.SectionInput{
			Key:          sec.SectionKey,
			Content:      sec.Content,
			EvidenceRefs: sec.EvidenceRefs,
		})
	}
	report := completeness.BuildReport(versionID, inputs)
	return &report, nil
}

// ContentByVersion returns section content keyed by section key. Rows that
// have never been written are omitted so diffs only see authored content.
func (s *Service) ContentByVersion(ctx context.Context, versionID uuid.UUID) (map[string]map[string]any, error) {
	sections, err := s.sections.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]any, len(sections))
	for _, sec := range sections {
		if len(sec.Content) == 0 {
			continue
		}
		out[sec.SectionKey] = sec.Content
	}
	return out, nil
}

// DeleteByVersion removes every section row owned by a version. The version
// service calls this after it has resolved tenant scope and deleted the
// version itself, so no org check happens here.
func (s *Service) DeleteByVersion(ctx context.Context, versionID uuid.UUID) error {
	return s.sections.DeleteByVersion(ctx, versionID)
}

func (s *Service) resolveVersion(ctx context.Context, orgID, versionID uuid.UUID) (*version.Version, error) {
	v, err := s.versions.FindByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.systems.FindByOrgAndID(ctx, orgID, v.SystemID); err != nil {
		return nil, version.ErrNotFound
	}
	return v, nil
}

func (s *Service) ensureRows(ctx context.Context, versionID uuid.UUID) error {
	now := requestcontext.Now(ctx)
	for _, key := range schema.Keys() {
		sec := &Section{
			ID:                uuid.New(),
			VersionID:         versionID,
			SectionKey:        key,
			Content:           map[string]any{},
			CompletenessScore: completeness.SectionScore(key, nil),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.sections.CreateIfAbsent(ctx, sec); err != nil {
			return err
		}
	}
	return nil
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
