package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	sgotel "github.com/swarmgate/swarmgate/internal/adapter/otel"
	"github.com/swarmgate/swarmgate/internal/config"
	"github.com/swarmgate/swarmgate/internal/domain"
	"github.com/swarmgate/swarmgate/internal/domain/coordination"
	"github.com/swarmgate/swarmgate/internal/port/cache"
	"github.com/swarmgate/swarmgate/internal/port/notifier"
	"github.com/swarmgate/swarmgate/internal/port/statestore"
)

// LearnerService owns the execution event log and the learned pattern store.
// Callers report coordination lifecycle events; the learner appends them,
// derives weighted pattern statistics from completed coordinations, and
// durably rewrites both collections on every mutation.
//
// The in-memory state is authoritative: a persistence failure is surfaced to
// the caller as a wrapped domain.ErrPersistence, but the mutation that
// triggered it stands.
type LearnerService struct {
	store   statestore.Store
	cache   cache.Cache
	notify  notifier.Notifier
	metrics *sgotel.Metrics
	cfg     config.Learner

	// mu serializes reporters. The engine itself stays synchronous; this
	// only keeps concurrent HTTP callers from interleaving log appends.
	mu       sync.Mutex
	events   []coordination.Event
	patterns map[string]coordination.Pattern

	now func() time.Time // for testing
}

// NewLearnerService creates a LearnerService and loads persisted state.
// metrics may be nil.
func NewLearnerService(
	ctx context.Context,
	store statestore.Store,
	analyticsCache cache.Cache,
	notify notifier.Notifier,
	metrics *sgotel.Metrics,
	cfg config.Learner,
) (*LearnerService, error) {
	events, err := store.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	patterns, err := store.LoadPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	if patterns == nil {
		patterns = make(map[string]coordination.Pattern)
	}
	if notify == nil {
		notify = notifier.Noop{}
	}
	return &LearnerService{
		store:    store,
		cache:    analyticsCache,
		notify:   notify,
		metrics:  metrics,
		cfg:      cfg,
		events:   events,
		patterns: patterns,
		now:      time.Now,
	}, nil
}

// ReportStart records the start of a coordination and returns its id,
// generating one when the caller did not supply it.
func (s *LearnerService) ReportStart(ctx context.Context, id string, itemCount int, domains []string, strategy coordination.Strategy) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	event := coordination.Event{
		ID:        id,
		Type:      coordination.EventStart,
		Timestamp: s.now(),
		ItemCount: itemCount,
		Domains:   append([]string(nil), domains...),
		Strategy:  strategy,
	}
	s.events = append(s.events, event)

	if s.metrics != nil {
		s.metrics.CoordinationsStarted.Add(ctx, 1)
	}
	s.afterMutation(ctx, event)

	if err := s.store.SaveEvents(ctx, s.events); err != nil {
		return id, fmt.Errorf("%w: save events: %w", domain.ErrPersistence, err)
	}
	return id, nil
}

// ReportComplete records the terminal event for a coordination. When a
// matching open start exists, the duration is derived from it and the pattern
// store is updated; otherwise the event is recorded as an orphan with no
// duration and no learning, and domain.ErrOrphanCompletion is returned so the
// caller knows nothing was learned.
func (s *LearnerService) ReportComplete(ctx context.Context, id string, success bool, errorMessage string) (*coordination.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evType := coordination.EventComplete
	if !success {
		evType = coordination.EventError
	}
	event := coordination.Event{
		ID:           id,
		Type:         evType,
		Timestamp:    s.now(),
		Success:      &success,
		ErrorMessage: errorMessage,
	}

	start := s.openStart(id)
	if start != nil {
		duration := event.Timestamp.Sub(start.Timestamp).Seconds()
		event.Duration = &duration
		event.ItemCount = start.ItemCount
		event.Domains = append([]string(nil), start.Domains...)
		event.Strategy = start.Strategy
		s.learn(event)
	}
	s.events = append(s.events, event)

	if s.metrics != nil {
		switch {
		case start == nil:
			s.metrics.OrphanCompletions.Add(ctx, 1)
		case success:
			s.metrics.CoordinationsCompleted.Add(ctx, 1)
		default:
			s.metrics.CoordinationsFailed.Add(ctx, 1)
		}
		if event.Duration != nil {
			s.metrics.CoordinationDuration.Record(ctx, *event.Duration)
		}
	}
	s.afterMutation(ctx, event)

	if err := s.persistAll(ctx); err != nil {
		return &event, err
	}
	if start == nil {
		return &event, fmt.Errorf("%w: id %q", domain.ErrOrphanCompletion, id)
	}
	return &event, nil
}

// openStart returns the start event for id if no terminal event has consumed
// it yet.
func (s *LearnerService) openStart(id string) *coordination.Event {
	var start *coordination.Event
	for i := range s.events {
		ev := &s.events[i]
		if ev.ID != id {
			continue
		}
		switch {
		case ev.Type == coordination.EventStart:
			start = ev
		case ev.Type.Terminal():
			start = nil
		}
	}
	return start
}

// learn folds one completed coordination into its pattern. New patterns start
// at the configured initial confidence; existing ones update by running mean
// and re-derive confidence from usage and success rate, capped at the
// configured maximum.
func (s *LearnerService) learn(event coordination.Event) {
	key := coordination.NewPatternKey(event.Domains, event.ItemCount, event.Strategy)
	success := 0.0
	if event.Success != nil && *event.Success {
		success = 1.0
	}

	p, exists := s.patterns[key.String()]
	if !exists {
		s.patterns[key.String()] = coordination.Pattern{
			Domains:     key.Domains,
			ItemCount:   key.ItemCount,
			Strategy:    key.Strategy,
			SuccessRate: success,
			AvgDuration: *event.Duration,
			UsageCount:  1,
			LastUsed:    event.Timestamp,
			Confidence:  s.cfg.InitialConfidence,
		}
		return
	}

	n := float64(p.UsageCount)
	p.AvgDuration = (p.AvgDuration*n + *event.Duration) / (n + 1)
	p.SuccessRate = (p.SuccessRate*n + success) / (n + 1)
	p.UsageCount++
	p.Confidence = float64(p.UsageCount)*s.cfg.UsageWeight + p.SuccessRate*s.cfg.SuccessWeight
	if p.Confidence > s.cfg.MaxConfidence {
		p.Confidence = s.cfg.MaxConfidence
	}
	p.LastUsed = event.Timestamp
	s.patterns[key.String()] = p
}

// afterMutation invalidates the analytics cache and broadcasts the event.
// Cache invalidation is synchronous so the next analytics read never sees a
// stale aggregate; broadcast failures are logged, never fatal.
func (s *LearnerService) afterMutation(ctx context.Context, event coordination.Event) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, analyticsCacheKey); err != nil {
			slog.Warn("analytics cache invalidation failed", "error", err)
		}
	}
	if err := s.notify.Publish(ctx, event); err != nil {
		slog.Warn("event broadcast failed", "event_id", event.ID, "type", event.Type, "error", err)
	}
}

// persistAll durably rewrites both mutated collections, reporting the first
// failure without abandoning the second write.
func (s *LearnerService) persistAll(ctx context.Context) error {
	eventsErr := s.store.SaveEvents(ctx, s.events)
	patternsErr := s.store.SavePatterns(ctx, s.patterns)
	if eventsErr != nil {
		return fmt.Errorf("%w: save events: %w", domain.ErrPersistence, eventsErr)
	}
	if patternsErr != nil {
		return fmt.Errorf("%w: save patterns: %w", domain.ErrPersistence, patternsErr)
	}
	return nil
}

// Events returns a snapshot of the event log.
func (s *LearnerService) Events() []coordination.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]coordination.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Patterns returns a snapshot of the pattern store.
func (s *LearnerService) Patterns() map[string]coordination.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]coordination.Pattern, len(s.patterns))
	for k, v := range s.patterns {
		out[k] = v
	}
	return out
}

// CompletedCount returns the number of completed coordinations that
// contributed to pattern learning.
func (s *LearnerService) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, p := range s.patterns {
		total += p.UsageCount
	}
	return total
}
