// Package memory provides in-process adapters: a RunStore and a
// ProgressSink recorder, both safe for concurrent use.
package memory

import (
	"context"
	"sync"

	"github.com/weftlabs/weft/pkg/domain"
)

// Store implements ports.RunStore in memory.
type Store struct {
	data map[string]*domain.Result
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Result),
	}
}

// Save persists the result in memory.
func (s *Store) Save(ctx context.Context, result *domain.Result) error {
	cp := copyResult(result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[result.RunID] = cp
	return nil
}

// Load retrieves a result from memory.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return copyResult(result), nil
}

// Delete removes a result.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns stored run IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	return runs, nil
}

// copyResult isolates stored results from caller mutation. State and event
// slices are copied; nested values are treated as immutable by convention.
func copyResult(r *domain.Result) *domain.Result {
	cp := *r
	cp.State = make(domain.Snapshot, len(r.State))
	for k, v := range r.State {
		cp.State[k] = v
	}
	cp.Events = append([]domain.ProgressEvent(nil), r.Events...)
	return &cp
}
