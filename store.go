package swarm

import (
	"context"
	"sync"
)

// Store persists session state between runs. Resume returns the latest
// snapshot for the session, or a fresh state when the session is new.
type Store interface {
	Resume(ctx context.Context, sessionID string) (*SharedState, error)
	Checkpoint(ctx context.Context, sessionID string, state *SharedState) error
}

// MemoryStore is an in-process Store keyed by session ID. Snapshots are
// deep-copied on both write and read.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SharedState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*SharedState)}
}

// Resume implements Store.
func (s *MemoryStore) Resume(_ context.Context, sessionID string) (*SharedState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.sessions[sessionID]; ok {
		return state.Clone(), nil
	}
	return NewSharedState(), nil
}

// Checkpoint implements Store.
func (s *MemoryStore) Checkpoint(_ context.Context, sessionID string, state *SharedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = state.Clone()
	return nil
}
