package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence seam for audit facts. Persistence and querying
// live outside the core; the engine only appends.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	return p.store.Append(ctx, base)
}

func (p *Publisher) List(ctx context.Context, orgID uuid.UUID) ([]Event, error) {
	return p.store.ListByOrg(ctx, orgID)
}
