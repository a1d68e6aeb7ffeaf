// Package memstore provides an in-memory credential store for tests and
// embedded use. State does not survive process restarts.
package memstore

import (
	"context"
	"sync"

	"github.com/dmitrymomot/fieldkit/core/session"
)

// Store keeps the session snapshot in memory behind a mutex.
type Store struct {
	mu   sync.RWMutex
	snap *session.Snapshot
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Load returns the stored snapshot or session.ErrNoSnapshot.
func (s *Store) Load(ctx context.Context) (*session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, session.ErrNoSnapshot
	}
	snap := *s.snap
	return &snap, nil
}

// Save replaces the stored snapshot.
func (s *Store) Save(ctx context.Context, snap session.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &snap
	return nil
}

// Clear removes the stored snapshot. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}
