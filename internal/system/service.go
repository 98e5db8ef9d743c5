package system

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"annexops/pkg/requestcontext"
)

// Service owns AI system identity records.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, orgID uuid.UUID, name, intendedPurpose string) (*System, error) {
	sys, err := New(uuid.New(), orgID, name, intendedPurpose, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, sys); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "system created",
		"system_id", sys.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return sys, nil
}

func (s *Service) Get(ctx context.Context, orgID, systemID uuid.UUID) (*System, error) {
	return s.store.FindByOrgAndID(ctx, orgID, systemID)
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]*System, error) {
	return s.store.ListByOrg(ctx, orgID)
}
