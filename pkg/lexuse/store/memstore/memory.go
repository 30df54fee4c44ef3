package memstore

import (
	"context"
	"sync"

	"github.com/dpriskorn/LexUse/pkg/lexuse/store"
)

// Store is an in-memory implementation of store.Store, used in tests and
// when history persistence is disabled.
type Store struct {
	mu        sync.RWMutex
	runs      map[string]store.Run
	decisions []store.Decision
	latest    map[[2]string]int // (formID, sentence) -> index into decisions
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:   make(map[string]store.Run),
		latest: make(map[[2]string]int),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// BeginRun records a run.
func (s *Store) BeginRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	return nil
}

// RecordDecision appends a decision and updates the (form, sentence) index.
func (s *Store) RecordDecision(ctx context.Context, d store.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, d)
	s.latest[[2]string{d.FormID, d.Sentence}] = len(s.decisions) - 1
	return nil
}

// LastDecision returns the most recent decision for a (form, sentence) pair.
func (s *Store) LastDecision(ctx context.Context, formID, sentence string) (store.Decision, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx, ok := s.latest[[2]string{formID, sentence}]; ok {
		return s.decisions[idx], true, nil
	}
	return store.Decision{}, false, nil
}

// DecisionsByRun returns all decisions recorded within one run, in order.
func (s *Store) DecisionsByRun(ctx context.Context, runID string) ([]store.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.Decision
	for _, d := range s.decisions {
		if d.RunID == runID {
			out = append(out, d)
		}
	}
	return out, nil
}
