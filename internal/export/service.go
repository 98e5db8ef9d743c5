package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"annexops/internal/audit"
	"annexops/internal/completeness"
	"annexops/internal/diff"
	"annexops/internal/evidence"
	"annexops/internal/export/metrics"
	"annexops/internal/manifest"
	"annexops/internal/section"
	"annexops/internal/storage"
	"annexops/internal/system"
	"annexops/internal/version"
	dErrors "annexops/pkg/domain-errors"
	"annexops/pkg/requestcontext"
)

// SectionSource supplies section state for a version. The section service
// implements it; auto-creation of missing rows happens behind this seam.
type SectionSource interface {
	ListForVersion(ctx context.Context, orgID, versionID uuid.UUID) ([]*section.Section, error)
	Report(ctx context.Context, orgID, versionID uuid.UUID) (*completeness.Report, error)
}

// Differ computes the version-to-version diff embedded in diff exports. The
// version service implements it.
type Differ interface {
	Diff(ctx context.Context, orgID, fromID, toID uuid.UUID) (*diff.Result, error)
}

// GenerateParams are the caller-supplied knobs for one export.
type GenerateParams struct {
	VersionID        uuid.UUID
	IncludeDiff      bool
	CompareVersionID *uuid.UUID
}

// Service generates export bundles. Generation is all-or-nothing: validation
// and computation failures happen before any storage write, and a failed
// record insert removes the uploaded object.
type Service struct {
	exports    Store
	versions   version.Store
	systems    system.Store
	sections   SectionSource
	evidence   evidence.Store
	objects    storage.ObjectStore
	differ     Differ
	logger     *slog.Logger
	audit      *audit.Publisher
	metrics    *metrics.Metrics
	presignTTL time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPresignTTL(ttl time.Duration) Option {
	return func(s *Service) { s.presignTTL = ttl }
}

func NewService(
	exports Store,
	versions version.Store,
	systems system.Store,
	sections SectionSource,
	evidenceStore evidence.Store,
	objects storage.ObjectStore,
	differ Differ,
	opts ...Option,
) *Service {
	s := &Service{
		exports:    exports,
		versions:   versions,
		systems:    systems,
		sections:   sections,
		evidence:   evidenceStore,
		objects:    objects,
		differ:     differ,
		logger:     slog.Default(),
		presignTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces one export bundle and its immutable record. Repeating a
// generation with no intervening edits yields an identical snapshot hash
// under a fresh id and storage URI.
func (s *Service) Generate(ctx context.Context, orgID uuid.UUID, orgName string, params GenerateParams, actor uuid.UUID) (*Export, error) {
	start := time.Now()
	exportType := TypeFull
	if params.IncludeDiff {
		exportType = TypeDiff
	}

	e, err := s.generate(ctx, orgID, orgName, params, actor, exportType)
	if err != nil {
		s.metrics.IncrementExports(exportType, "error")
		return nil, err
	}
	s.metrics.IncrementExports(exportType, "success")
	s.metrics.ObserveGenerateLatency(time.Since(start))
	s.metrics.ObserveBundleSize(e.FileSize)
	return e, nil
}

func (s *Service) generate(ctx context.Context, orgID uuid.UUID, orgName string, params GenerateParams, actor uuid.UUID, exportType string) (*Export, error) {
	// Validation happens before any load or write.
	if params.IncludeDiff && params.CompareVersionID == nil {
		return nil, dErrors.New(dErrors.CodeMissingCompareVersion, "include_diff requires compare_version_id")
	}

	v, sys, err := s.resolveVersion(ctx, orgID, params.VersionID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "export started",
		"version_id", v.ID.String(),
		"export_type", exportType,
		"request_id", requestcontext.RequestID(ctx),
	)

	var diffResult *diff.Result
	if params.IncludeDiff {
		diffResult, err = s.differ.Diff(ctx, orgID, *params.CompareVersionID, v.ID)
		if err != nil {
			return nil, err
		}
	}

	sections, err := s.sections.ListForVersion(ctx, orgID, v.ID)
	if err != nil {
		return nil, err
	}
	report, err := s.sections.Report(ctx, orgID, v.ID)
	if err != nil {
		return nil, err
	}
	items, err := s.evidence.ListByVersion(ctx, v.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load evidence index")
	}

	sectionData := make([]manifest.SectionData, 0, len(sections))
	for _, sec := range sections {
		sectionData = append(sectionData, manifest.SectionData{
			Key:          sec.SectionKey,
			Content:      sec.Content,
			EvidenceRefs: sec.EvidenceRefs,
		})
	}

	m := manifest.Build(
		manifest.OrgInfo{ID: orgID, Name: orgName},
		manifest.SystemInfo{ID: sys.ID, Name: sys.Name, IntendedPurpose: sys.IntendedPurpose},
		manifest.VersionInfo{
			ID:          v.ID,
			Label:       v.Label,
			Status:      string(v.Status),
			ReleaseDate: v.ReleaseDate,
			CreatedAt:   v.CreatedAt,
			UpdatedAt:   v.UpdatedAt,
		},
		sectionData,
		evidence.IndexItems(items),
	)
	m, err = manifest.Finalize(m)
	if err != nil {
		return nil, err
	}

	bundle, err := buildBundle(ctx, bundleInput{manifest: m, report: *report, diff: diffResult})
	if err != nil {
		return nil, err
	}

	exportID := uuid.New()
	key := fmt.Sprintf("exports/%s/%s.zip", v.ID, exportID)
	uri, err := s.objects.Put(ctx, key, bundle, "application/zip")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "upload export bundle")
	}

	now := requestcontext.Now(ctx)
	e := &Export{
		ID:                exportID,
		VersionID:         v.ID,
		ExportType:        exportType,
		SnapshotHash:      m.SnapshotHash,
		StorageURI:        uri,
		FileSize:          int64(len(bundle)),
		IncludeDiff:       params.IncludeDiff,
		CompareVersionID:  params.CompareVersionID,
		CompletenessScore: report.OverallScore,
		CreatedBy:         actor,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.exports.Create(ctx, e); err != nil {
		// All-or-nothing: a record insert failure must not leave an orphan
		// object behind.
		if delErr := s.objects.Delete(ctx, uri); delErr != nil {
			s.logger.WarnContext(ctx, "orphan bundle cleanup failed",
				"storage_uri", uri, "error", delErr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist export record")
	}

	if err := s.versions.SetSnapshotHash(ctx, v.ID, m.SnapshotHash); err != nil {
		// The record is the source of truth; the version field is a cache
		// refreshed on the next export.
		s.logger.WarnContext(ctx, "snapshot hash update failed",
			"version_id", v.ID.String(), "error", err)
	}

	s.logAudit(ctx, audit.Event{
		OrgID:      orgID,
		UserID:     actor,
		Action:     audit.ActionExportCreate,
		EntityType: "export",
		EntityID:   e.ID,
		Detail: map[string]any{
			"version_id":    v.ID.String(),
			"export_type":   exportType,
			"snapshot_hash": e.SnapshotHash,
		},
	})

	s.logger.InfoContext(ctx, "export completed",
		"export_id", e.ID.String(),
		"version_id", v.ID.String(),
		"export_type", exportType,
		"snapshot_hash", e.SnapshotHash,
		"file_size", e.FileSize,
		"request_id", requestcontext.RequestID(ctx),
	)
	return e, nil
}

// Get returns a single export record, tenant-scoped.
func (s *Service) Get(ctx context.Context, orgID, exportID uuid.UUID) (*Export, error) {
	e, err := s.exports.FindByID(ctx, exportID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.resolveVersion(ctx, orgID, e.VersionID); err != nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// List returns all exports of a version, oldest first.
func (s *Service) List(ctx context.Context, orgID, versionID uuid.UUID) ([]*Export, error) {
	if _, _, err := s.resolveVersion(ctx, orgID, versionID); err != nil {
		return nil, err
	}
	return s.exports.ListByVersion(ctx, versionID)
}

// DownloadURL returns a time-limited URL for a bundle.
func (s *Service) DownloadURL(ctx context.Context, orgID, exportID uuid.UUID) (string, error) {
	e, err := s.Get(ctx, orgID, exportID)
	if err != nil {
		return "", err
	}
	url, err := s.objects.PresignedGet(ctx, e.StorageURI, s.presignTTL)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "presign export download")
	}
	return url, nil
}

func (s *Service) resolveVersion(ctx context.Context, orgID, versionID uuid.UUID) (*version.Version, *system.System, error) {
	v, err := s.versions.FindByID(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	sys, err := s.systems.FindByOrgAndID(ctx, orgID, v.SystemID)
	if err != nil {
		return nil, nil, version.ErrNotFound
	}
	return v, sys, nil
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
