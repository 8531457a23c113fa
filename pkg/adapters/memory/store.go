package memory

import (
	"context"
	"sync"

	"github.com/aretw0/routine/pkg/domain"
)

// Store implements ports.TraceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]*domain.TickReport
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]*domain.TickReport),
	}
}

// Append stores copies of the reports so callers can't mutate them afterwards.
func (s *Store) Append(ctx context.Context, runID string, reports ...*domain.TickReport) error {
	if len(reports) == 0 {
		return nil
	}
	copies := make([]*domain.TickReport, 0, len(reports))
	for _, rep := range reports {
		copies = append(copies, rep.Snapshot())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID] = append(s.data[runID], copies...)
	return nil
}

// Load retrieves a copy of the trace from memory.
func (s *Store) Load(ctx context.Context, runID string) ([]*domain.TickReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trace, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}

	ret := make([]*domain.TickReport, 0, len(trace))
	for _, rep := range trace {
		ret = append(ret, rep.Snapshot())
	}
	return ret, nil
}

// Delete removes the trace.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns the stored runs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	return runs, nil
}
