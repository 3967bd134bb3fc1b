package storage

import (
	"context"
	"sync"
)

// MemorySink keeps the document in process memory.
type MemorySink struct {
	mu     sync.Mutex
	data   []byte
	exists bool
	writes int
}

// NewMemorySink returns an empty sink. Pass seed to start with a document.
func NewMemorySink(seed []byte) *MemorySink {
	s := &MemorySink{}
	if seed != nil {
		s.data = append([]byte(nil), seed...)
		s.exists = true
	}
	return s
}

func (s *MemorySink) Read(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemorySink) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.exists = true
	s.writes++
	return nil
}

// Writes reports how many writes the sink has accepted.
func (s *MemorySink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
