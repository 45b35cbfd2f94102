package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory FindingsStore.
// Suitable for development and testing. Data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	findings []*Finding
	closed   bool
}

// NewMemoryStore creates a new in-memory findings store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append persists a finding record.
func (s *MemoryStore) Append(ctx context.Context, f *Finding) error {
	if f == nil {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}

	stored := *f
	s.findings = append(s.findings, &stored)
	return nil
}

// Records returns a snapshot of all stored findings in append order.
func (s *MemoryStore) Records() []*Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// Ping checks if the store is healthy.
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Close closes the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
