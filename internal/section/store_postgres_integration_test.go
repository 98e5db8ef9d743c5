//go:build integration

package section_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"annexops/internal/schema"
	"annexops/internal/section"
	"annexops/internal/system"
	"annexops/internal/version"
	"annexops/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	systems  *system.PostgresStore
	versions *version.PostgresStore
	store    *section.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.systems = system.NewPostgres(s.postgres.DB)
	s.versions = version.NewPostgres(s.postgres.DB)
	s.store = section.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "ai_systems")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newVersion() *version.Version {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	sys := &system.System{
		ID:              uuid.New(),
		OrgID:           uuid.New(),
		Name:            "Fraud Detection " + uuid.NewString(),
		IntendedPurpose: "transaction screening",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.Require().NoError(s.systems.Create(ctx, sys))

	v, err := version.New(uuid.New(), sys.ID, "v1.0.0", nil, uuid.New(), now)
	s.Require().NoError(err)
	s.Require().NoError(s.versions.CreateIfLabelAvailable(ctx, v))
	return v
}

func newTestSection(versionID uuid.UUID, key string) *section.Section {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &section.Section{
		ID:         uuid.New(),
		VersionID:  versionID,
		SectionKey: key,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TestCreateIfAbsentIsIdempotent verifies the ON CONFLICT clause keeps the
// first row when the same key is inserted twice.
func (s *PostgresStoreSuite) TestCreateIfAbsentIsIdempotent() {
	ctx := context.Background()
	v := s.newVersion()

	first := newTestSection(v.ID, "ANNEX4.GENERAL")
	s.Require().NoError(s.store.CreateIfAbsent(ctx, first))

	second := newTestSection(v.ID, "ANNEX4.GENERAL")
	s.Require().NoError(s.store.CreateIfAbsent(ctx, second))

	found, err := s.store.FindByVersionAndKey(ctx, v.ID, "ANNEX4.GENERAL")
	s.Require().NoError(err)
	s.Equal(first.ID, found.ID, "the first insert wins")

	sections, err := s.store.ListByVersion(ctx, v.ID)
	s.Require().NoError(err)
	s.Len(sections, 1)
}

// TestContentRoundTrip verifies JSONB content and text[] evidence refs survive
// a write and read unchanged.
func (s *PostgresStoreSuite) TestContentRoundTrip() {
	ctx := context.Background()
	v := s.newVersion()

	sec := newTestSection(v.ID, "ANNEX4.GENERAL")
	s.Require().NoError(s.store.CreateIfAbsent(ctx, sec))

	content := map[string]any{
		"provider_name": "Acme Corp",
		"system_name":   "Fraud Detection",
		"nested":        map[string]any{"depth": float64(2)},
	}
	refs := []string{"ev-1", "ev-2"}
	editor := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	err := s.store.UpdateContent(ctx, sec.ID, content, refs, 40.0, true, editor, now)
	s.Require().NoError(err)

	found, err := s.store.FindByVersionAndKey(ctx, v.ID, "ANNEX4.GENERAL")
	s.Require().NoError(err)
	s.Equal(content, found.Content)
	s.Equal(refs, found.EvidenceRefs)
	s.Equal(40.0, found.CompletenessScore)
	s.True(found.LLMAssisted)
	s.Require().NotNil(found.LastEditedBy)
	s.Equal(editor, *found.LastEditedBy)
	s.True(found.UpdatedAt.Equal(now))
}

func (s *PostgresStoreSuite) TestListByVersionOrdersByKey() {
	ctx := context.Background()
	v := s.newVersion()

	keys := schema.Keys()
	// Insert in reverse to prove ordering comes from the query.
	for i := len(keys) - 1; i >= 0; i-- {
		s.Require().NoError(s.store.CreateIfAbsent(ctx, newTestSection(v.ID, keys[i])))
	}

	sections, err := s.store.ListByVersion(ctx, v.ID)
	s.Require().NoError(err)
	s.Require().Len(sections, len(keys))
	for i, sec := range sections {
		s.Equal(keys[i], sec.SectionKey)
	}
}

// TestCascadeOnVersionDelete verifies the foreign key removes sections when
// their version goes away.
func (s *PostgresStoreSuite) TestCascadeOnVersionDelete() {
	ctx := context.Background()
	v := s.newVersion()

	s.Require().NoError(s.store.CreateIfAbsent(ctx, newTestSection(v.ID, "ANNEX4.GENERAL")))
	s.Require().NoError(s.versions.Delete(ctx, v.ID))

	sections, err := s.store.ListByVersion(ctx, v.ID)
	s.Require().NoError(err)
	s.Empty(sections)
}

func (s *PostgresStoreSuite) TestNotFoundError() {
	ctx := context.Background()
	v := s.newVersion()

	_, err := s.store.FindByVersionAndKey(ctx, v.ID, "ANNEX4.GENERAL")
	s.ErrorIs(err, section.ErrNotFound)

	err = s.store.UpdateContent(ctx, uuid.New(), map[string]any{}, nil, 0, false, uuid.New(), time.Now())
	s.ErrorIs(err, section.ErrNotFound)
}
