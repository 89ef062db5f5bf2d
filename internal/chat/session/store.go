package session

import (
	"context"
	"sync"
)

// Store persists conversation contexts keyed by user id.
//
// Both implementations are last-write-wins per key: two concurrent turns for
// the same user do not interleave slot updates, the later Put replaces the
// earlier one wholesale. Turns for one user are serialized by the client in
// practice (a widget sends one message at a time).
type Store interface {
	// Get returns the context for a user, or a fresh one when none exists.
	Get(ctx context.Context, userID string) (Context, error)
	// Put stores the context, replacing any previous value.
	Put(ctx context.Context, userID string, sessionCtx Context) error
}

// MemoryStore keeps contexts in process memory. State is lost on restart,
// which matches the single-instance deployment this service started from.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]Context
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[string]Context)}
}

// Get returns a copy of the stored context so callers can mutate freely.
func (s *MemoryStore) Get(_ context.Context, userID string) (Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.contexts[userID]
	if !ok {
		return NewContext(userID), nil
	}
	return stored, nil
}

// Put stores the context for a user.
func (s *MemoryStore) Put(_ context.Context, userID string, sessionCtx Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contexts[userID] = sessionCtx
	return nil
}
