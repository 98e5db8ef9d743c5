package section

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	sections map[uuid.UUID]*Section
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sections: make(map[uuid.UUID]*Section)}
}

func (s *InMemoryStore) CreateIfAbsent(_ context.Context, sec *Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sections {
		if existing.VersionID == sec.VersionID && existing.SectionKey == sec.SectionKey {
			return nil
		}
	}
	s.sections[sec.ID] = copySection(sec)
	return nil
}

func (s *InMemoryStore) ListByVersion(_ context.Context, versionID uuid.UUID) ([]*Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Section
	for _, sec := range s.sections {
		if sec.VersionID == versionID {
			out = append(out, copySection(sec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionKey < out[j].SectionKey })
	return out, nil
}

func (s *InMemoryStore) FindByVersionAndKey(_ context.Context, versionID uuid.UUID, key string) (*Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sec := range s.sections {
		if sec.VersionID == versionID && sec.SectionKey == key {
			return copySection(sec), nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) UpdateContent(_ context.Context, id uuid.UUID, content map[string]any, evidenceRefs []string, score float64, llmAssisted bool, editedBy uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.sections[id]
	if !ok {
		return ErrNotFound
	}
	sec.Content = maps.Clone(content)
	sec.EvidenceRefs = slices.Clone(evidenceRefs)
	sec.CompletenessScore = score
	sec.LLMAssisted = llmAssisted
	sec.LastEditedBy = &editedBy
	sec.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) DeleteByVersion(_ context.Context, versionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sec := range s.sections {
		if sec.VersionID == versionID {
			delete(s.sections, id)
		}
	}
	return nil
}

func copySection(sec *Section) *Section {
	cp := *sec
	cp.Content = maps.Clone(sec.Content)
	cp.EvidenceRefs = slices.Clone(sec.EvidenceRefs)
	return &cp
}
