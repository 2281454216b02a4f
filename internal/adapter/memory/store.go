// Package memory implements the statestore port in process memory.
// It backs tests and any deployment that does not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

// Store implements statestore.Store with copy-on-read/write semantics so
// callers can never alias the stored collections.
type Store struct {
	mu       sync.Mutex
	events   []coordination.Event
	patterns map[string]coordination.Pattern
	insights []coordination.Insight
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{patterns: make(map[string]coordination.Pattern)}
}

// LoadEvents returns a copy of the stored event log.
func (s *Store) LoadEvents(_ context.Context) ([]coordination.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]coordination.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// SaveEvents replaces the stored event log.
func (s *Store) SaveEvents(_ context.Context, events []coordination.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make([]coordination.Event, len(events))
	copy(s.events, events)
	return nil
}

// LoadPatterns returns a copy of the stored pattern map.
func (s *Store) LoadPatterns(_ context.Context) (map[string]coordination.Pattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]coordination.Pattern, len(s.patterns))
	for k, v := range s.patterns {
		out[k] = v
	}
	return out, nil
}

// SavePatterns replaces the stored pattern map.
func (s *Store) SavePatterns(_ context.Context, patterns map[string]coordination.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = make(map[string]coordination.Pattern, len(patterns))
	for k, v := range patterns {
		s.patterns[k] = v
	}
	return nil
}

// LoadInsights returns a copy of the stored insight list.
func (s *Store) LoadInsights(_ context.Context) ([]coordination.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]coordination.Insight, len(s.insights))
	copy(out, s.insights)
	return out, nil
}

// SaveInsights replaces the stored insight list.
func (s *Store) SaveInsights(_ context.Context, insights []coordination.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights = make([]coordination.Insight, len(insights))
	copy(s.insights, insights)
	return nil
}
