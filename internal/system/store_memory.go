package system

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	systems map[uuid.UUID]*System
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{systems: make(map[uuid.UUID]*System)}
}

func (s *InMemoryStore) Create(_ context.Context, sys *System) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sys
	s.systems[sys.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByOrgAndID(_ context.Context, orgID, id uuid.UUID) (*System, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sys, ok := s.systems[id]
	if !ok || sys.OrgID != orgID {
		return nil, ErrNotFound
	}
	cp := *sys
	return &cp, nil
}

func (s *InMemoryStore) ListByOrg(_ context.Context, orgID uuid.UUID) ([]*System, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*System
	for _, sys := range s.systems {
		if sys.OrgID == orgID {
			cp := *sys
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
