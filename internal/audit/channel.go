package audit

import (
	"context"

	"github.com/google/uuid"

	dErrors "annexops/pkg/domain-errors"
)

// ChannelStore is a Store front that hands events to a Worker through a
// buffered channel, decoupling request latency from audit persistence. Reads
// go to the backing store the Worker writes into.
type ChannelStore struct {
	inbox   chan<- Event
	backing Store
}

func NewChannelStore(inbox chan<- Event, backing Store) *ChannelStore {
	return &ChannelStore{inbox: inbox, backing: backing}
}

func (s *ChannelStore) Append(_ context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	default:
		// A full inbox means the worker is wedged; losing audit facts
		// silently is worse than failing the write.
		return dErrors.New(dErrors.CodeInternal, "audit inbox full")
	}
}

func (s *ChannelStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Event, error) {
	return s.backing.ListByOrg(ctx, orgID)
}
