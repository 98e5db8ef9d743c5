package export

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	exports map[uuid.UUID]*Export
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{exports: make(map[uuid.UUID]*Export)}
}

func (s *InMemoryStore) Create(_ context.Context, e *Export) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.exports[e.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exports[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *InMemoryStore) ListByVersion(_ context.Context, versionID uuid.UUID) ([]*Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Export
	for _, e := range s.exports {
		if e.VersionID == versionID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
