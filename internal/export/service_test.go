package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"annexops/internal/audit"
	"annexops/internal/evidence"
	"annexops/internal/export"
	"annexops/internal/section"
	"annexops/internal/storage"
	"annexops/internal/storage/mocks"
	"annexops/internal/system"
	"annexops/internal/version"
	dErrors "annexops/pkg/domain-errors"
	"annexops/pkg/requestcontext"
)

type fixture struct {
	svc      *export.Service
	exports  *export.InMemoryStore
	versions *version.InMemoryStore
	systems  *system.InMemoryStore
	sections *section.Service
	evidence *evidence.InMemoryStore
	objects  *storage.InMemoryStore
	orgID    uuid.UUID
	system   *system.System
	version  *version.Version
	userID   uuid.UUID
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orgID := uuid.New()
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	systems := system.NewInMemoryStore()
	sys, err := system.New(uuid.New(), orgID, "resume-ranker", "candidate screening", now)
	require.NoError(t, err)
	require.NoError(t, systems.Create(ctx, sys))

	versions := version.NewInMemoryStore()
	v, err := version.New(uuid.New(), sys.ID, "v1.0", nil, userID, now)
	require.NoError(t, err)
	require.NoError(t, versions.CreateIfLabelAvailable(ctx, v))

	sectionSvc := section.NewService(section.NewInMemoryStore(), versions, systems)
	evidenceStore := evidence.NewInMemoryStore()
	versionSvc := version.NewService(versions, systems, sectionSvc, evidenceStore)
	objects := storage.NewInMemoryStore()
	exports := export.NewInMemoryStore()

	svc := export.NewService(
		exports, versions, systems, sectionSvc, evidenceStore, objects, versionSvc,
		export.WithAuditPublisher(audit.NewPublisher(audit.NewInMemoryStore())),
	)
	return &fixture{
		svc:      svc,
		exports:  exports,
		versions: versions,
		systems:  systems,
		sections: sectionSvc,
		evidence: evidenceStore,
		objects:  objects,
		orgID:    orgID,
		system:   sys,
		version:  v,
		userID:   userID,
		ctx:      ctx,
	}
}

func (f *fixture) fillGeneral(t *testing.T) {
	t.Helper()
	content := map[string]any{
		"provider_name":               "Acme",
		"provider_address":            "1 Main St",
		"system_name":                 "resume-ranker",
		"system_version":              "1.0",
		"conformity_declaration_date": "2026-01-15",
	}
	_, err := f.sections.UpdateContent(f.ctx, f.orgID, f.version.ID, "ANNEX4.GENERAL", content, []string{"ev-1"}, false, f.userID)
	require.NoError(t, err)
}

func bundleFiles(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	files := make(map[string][]byte, len(zr.File))
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[zf.Name] = content
	}
	return files
}

func TestGenerateFullExport(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	checksum := "filechecksum123"
	require.NoError(t, f.evidence.Add(f.ctx, &evidence.Item{
		ID: uuid.New(), VersionID: f.version.ID,
		Title: "bias audit", Type: "report", FileChecksum: &checksum,
		CreatedBy: f.userID, CreatedAt: requestcontext.Now(f.ctx),
	}))

	e, err := f.svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	require.NoError(t, err)

	assert.Equal(t, export.TypeFull, e.ExportType)
	assert.Len(t, e.SnapshotHash, 64)
	assert.Greater(t, e.FileSize, int64(0))
	assert.False(t, e.IncludeDiff)
	assert.Nil(t, e.CompareVersionID)
	assert.Greater(t, e.CompletenessScore, 0.0)

	data, ok := f.objects.Get(e.StorageURI)
	require.True(t, ok)
	assert.Equal(t, int64(len(data)), e.FileSize)

	files := bundleFiles(t, data)
	for _, name := range []string{
		"AnnexIV.html", "SystemManifest.json", "EvidenceIndex.json",
		"EvidenceIndex.csv", "CompletenessReport.json",
	} {
		assert.Contains(t, files, name)
	}
	assert.NotContains(t, files, "DiffReport.json")

	assert.Contains(t, string(files["AnnexIV.html"]), "resume-ranker")
	assert.Contains(t, string(files["AnnexIV.html"]), e.SnapshotHash)
	assert.Contains(t, string(files["EvidenceIndex.csv"]), "id,title,type,checksum")
	assert.Contains(t, string(files["EvidenceIndex.csv"]), "filechecksum123")
	assert.Contains(t, string(files["SystemManifest.json"]), e.SnapshotHash)

	// The version carries the latest snapshot hash after export.
	v, err := f.versions.FindByID(f.ctx, f.version.ID)
	require.NoError(t, err)
	require.NotNil(t, v.SnapshotHash)
	assert.Equal(t, e.SnapshotHash, *v.SnapshotHash)
}

func TestGenerateTwiceSameHashDistinctRecords(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	first, err := f.svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	require.NoError(t, err)
	second, err := f.svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	require.NoError(t, err)

	assert.Equal(t, first.SnapshotHash, second.SnapshotHash)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.StorageURI, second.StorageURI)

	records, err := f.exports.ListByVersion(f.ctx, f.version.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGenerateHashChangesAfterEdit(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	before, err := f.svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	require.NoError(t, err)

	_, err = f.sections.UpdateContent(f.ctx, f.orgID, f.version.ID, "ANNEX4.GENERAL",
		map[string]any{"provider_name": "Acme GmbH"}, nil, false, f.userID)
	require.NoError(t, err)

	after, err := f.svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	require.NoError(t, err)

	assert.NotEqual(t, before.SnapshotHash, after.SnapshotHash)
}

func TestGenerateMissingCompareVersion(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	_, err := f.svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID, IncludeDiff: true}, f.userID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingCompareVersion))

	// Validation failed before any write: no objects, no records.
	assert.Zero(t, f.objects.Len())
	records, err := f.exports.ListByVersion(f.ctx, f.version.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenerateDiffExport(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	compare, err := version.New(uuid.New(), f.system.ID, "v0.9", nil, f.userID, requestcontext.Now(f.ctx))
	require.NoError(t, err)
	require.NoError(t, f.versions.CreateIfLabelAvailable(f.ctx, compare))

	e, err := f.svc.Generate(f.ctx, f.orgID, "Acme Corp", export.GenerateParams{
		VersionID:        f.version.ID,
		IncludeDiff:      true,
		CompareVersionID: &compare.ID,
	}, f.userID)
	require.NoError(t, err)

	assert.Equal(t, export.TypeDiff, e.ExportType)
	assert.True(t, e.IncludeDiff)
	require.NotNil(t, e.CompareVersionID)
	assert.Equal(t, compare.ID, *e.CompareVersionID)

	data, ok := f.objects.Get(e.StorageURI)
	require.True(t, ok)
	files := bundleFiles(t, data)
	require.Contains(t, files, "DiffReport.json")
	assert.Contains(t, string(files["DiffReport.json"]), "label")
}

func TestGenerateCrossTenant(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	_, err := f.svc.Generate(f.ctx, uuid.New(), "Other Org",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Zero(t, f.objects.Len())
}

func TestGenerateUploadFailureLeavesNoRecord(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	ctrl := gomock.NewController(t)
	objects := mocks.NewMockObjectStore(ctrl)
	objects.EXPECT().
		Put(gomock.Any(), gomock.Any(), gomock.Any(), "application/zip").
		Return("", errors.New("disk full"))

	svc := export.NewService(
		f.exports, f.versions, f.systems, f.sections, f.evidence, objects, nil,
	)
	_, err := svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStorageFailure))

	records, err := f.exports.ListByVersion(f.ctx, f.version.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenerateRecordFailureDeletesObject(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	ctrl := gomock.NewController(t)
	objects := mocks.NewMockObjectStore(ctrl)
	objects.EXPECT().
		Put(gomock.Any(), gomock.Any(), gomock.Any(), "application/zip").
		Return("mem://exports/x.zip", nil)
	objects.EXPECT().
		Delete(gomock.Any(), "mem://exports/x.zip").
		Return(nil)

	svc := export.NewService(
		&failingExportStore{}, f.versions, f.systems, f.sections, f.evidence, objects, nil,
	)
	_, err := svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestDownloadURL(t *testing.T) {
	f := newFixture(t)
	f.fillGeneral(t)

	e, err := f.svc.Generate(f.ctx, f.orgID, "Acme Corp",
		export.GenerateParams{VersionID: f.version.ID}, f.userID)
	require.NoError(t, err)

	url, err := f.svc.DownloadURL(f.ctx, f.orgID, e.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "expires=")

	// Cross-tenant download reads as not found.
	_, err = f.svc.DownloadURL(f.ctx, uuid.New(), e.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

type failingExportStore struct{}

func (f *failingExportStore) Create(context.Context, *export.Export) error {
	return errors.New("insert failed")
}

func (f *failingExportStore) FindByID(context.Context, uuid.UUID) (*export.Export, error) {
	return nil, export.ErrNotFound
}

func (f *failingExportStore) ListByVersion(context.Context, uuid.UUID) ([]*export.Export, error) {
	return nil, nil
}
