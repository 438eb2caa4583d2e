package appointment

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu  sync.RWMutex
	rec *Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return Record{}, ErrNoRecord
	}
	return *s.rec, nil
}

func (s *MemoryStore) Set(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec = &rec
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec = nil
	return nil
}
