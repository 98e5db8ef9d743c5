package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	dErrors "annexops/pkg/domain-errors"
)

const memScheme = "mem://"

type object struct {
	data        []byte
	contentType string
}

// InMemoryStore keeps objects in a map. Tests and dev mode use it.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string]object)}
}

func (s *InMemoryStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; ok {
		return "", dErrors.New(dErrors.CodeStorageFailure, "object already exists: "+key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = object{data: cp, contentType: contentType}
	return memScheme + key, nil
}

func (s *InMemoryStore) PresignedGet(_ context.Context, uri string, ttl time.Duration) (string, error) {
	key, ok := strings.CutPrefix(uri, memScheme)
	if !ok {
		return "", dErrors.New(dErrors.CodeStorageFailure, "unrecognized storage URI: "+uri)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, exists := s.objects[key]; !exists {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("%s%s?expires=%d", memScheme, key, time.Now().Add(ttl).Unix()), nil
}

func (s *InMemoryStore) Delete(_ context.Context, uri string) error {
	key, ok := strings.CutPrefix(uri, memScheme)
	if !ok {
		return dErrors.New(dErrors.CodeStorageFailure, "unrecognized storage URI: "+uri)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[key]; !exists {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

// Get reads an object back; handy for assertions on bundle content.
func (s *InMemoryStore) Get(uri string) ([]byte, bool) {
	key, ok := strings.CutPrefix(uri, memScheme)
	if !ok {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, exists := s.objects[key]
	if !exists {
		return nil, false
	}
	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, true
}

// Len reports the number of stored objects.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
