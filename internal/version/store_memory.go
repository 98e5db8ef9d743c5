package version

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"annexops/internal/workflow"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	versions map[uuid.UUID]*Version
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{versions: make(map[uuid.UUID]*Version)}
}

func (s *InMemoryStore) CreateIfLabelAvailable(_ context.Context, v *Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.versions {
		if existing.SystemID == v.SystemID && existing.Label == v.Label {
			return ErrDuplicateLabel
		}
	}
	cp := *v
	s.versions[v.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *InMemoryStore) ListBySystem(_ context.Context, systemID uuid.UUID) ([]*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Version
	for _, v := range s.versions {
		if v.SystemID == systemID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status workflow.Status, approvedBy *uuid.UUID, approvedAt *time.Time, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[id]
	if !ok {
		return ErrNotFound
	}
	v.Status = status
	v.ApprovedBy = approvedBy
	v.ApprovedAt = approvedAt
	v.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) SetSnapshotHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[id]
	if !ok {
		return ErrNotFound
	}
	v.SnapshotHash = &hash
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.versions[id]; !ok {
		return ErrNotFound
	}
	delete(s.versions, id)
	return nil
}
