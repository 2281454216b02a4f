package statestore

import (
	"context"
	"testing"
	"time"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

// RunComplianceTests runs the standard compliance suite against any Store
// implementation: cold-start emptiness and lossless round-trips of all three
// collections.
func RunComplianceTests(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("ColdStartEmpty", func(t *testing.T) {
		events, err := s.LoadEvents(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 0 {
			t.Fatalf("expected empty event log on cold start, got %d", len(events))
		}
		patterns, err := s.LoadPatterns(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(patterns) != 0 {
			t.Fatalf("expected empty pattern map on cold start, got %d", len(patterns))
		}
		insights, err := s.LoadInsights(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(insights) != 0 {
			t.Fatalf("expected empty insight list on cold start, got %d", len(insights))
		}
	})

	t.Run("EventsRoundTrip", func(t *testing.T) {
		dur := 2.5
		ok := true
		events := []coordination.Event{
			{
				ID:        "c-1",
				Type:      coordination.EventStart,
				Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				ItemCount: 3,
				Domains:   []string{"backend", "testing"},
				Strategy:  coordination.StrategyParallel,
			},
			{
				ID:        "c-1",
				Type:      coordination.EventComplete,
				Timestamp: time.Date(2025, 6, 1, 12, 0, 2, 500000000, time.UTC),
				ItemCount: 3,
				Domains:   []string{"backend", "testing"},
				Strategy:  coordination.StrategyParallel,
				Duration:  &dur,
				Success:   &ok,
			},
		}
		if err := s.SaveEvents(ctx, events); err != nil {
			t.Fatal(err)
		}
		got, err := s.LoadEvents(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(events) {
			t.Fatalf("expected %d events, got %d", len(events), len(got))
		}
		if got[1].Duration == nil || *got[1].Duration != dur {
			t.Fatalf("duration lost in round-trip: %+v", got[1])
		}
		if got[1].Success == nil || !*got[1].Success {
			t.Fatalf("success flag lost in round-trip: %+v", got[1])
		}
		if !got[0].Timestamp.Equal(events[0].Timestamp) {
			t.Fatalf("timestamp changed: got %v want %v", got[0].Timestamp, events[0].Timestamp)
		}
	})

	t.Run("PatternsRoundTrip", func(t *testing.T) {
		key := coordination.NewPatternKey([]string{"testing"}, 2, coordination.StrategyParallel)
		patterns := map[string]coordination.Pattern{
			key.String(): {
				Domains:     []string{"testing"},
				ItemCount:   2,
				Strategy:    coordination.StrategyParallel,
				SuccessRate: 1.0,
				AvgDuration: 2.0,
				UsageCount:  3,
				LastUsed:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				Confidence:  0.8,
			},
		}
		if err := s.SavePatterns(ctx, patterns); err != nil {
			t.Fatal(err)
		}
		got, err := s.LoadPatterns(ctx)
		if err != nil {
			t.Fatal(err)
		}
		p, found := got[key.String()]
		if !found {
			t.Fatalf("pattern %q missing after round-trip", key.String())
		}
		if p.UsageCount != 3 || p.SuccessRate != 1.0 || p.AvgDuration != 2.0 {
			t.Fatalf("pattern fields lost: %+v", p)
		}
	})

	t.Run("InsightsRoundTrip", func(t *testing.T) {
		insights := []coordination.Insight{
			{
				ID:             "ins-1",
				Category:       coordination.InsightReliability,
				Description:    "low success rate for backend pairs",
				Recommendation: "reduce batch size",
				ImpactScore:    0.7,
				Confidence:     0.6,
				CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				AppliesTo:      []string{"backend_2_parallel"},
			},
		}
		if err := s.SaveInsights(ctx, insights); err != nil {
			t.Fatal(err)
		}
		got, err := s.LoadInsights(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "ins-1" || got[0].Category != coordination.InsightReliability {
			t.Fatalf("insights lost in round-trip: %+v", got)
		}
	})

	t.Run("SaveEmptyOverwrites", func(t *testing.T) {
		if err := s.SaveEvents(ctx, nil); err != nil {
			t.Fatal(err)
		}
		got, err := s.LoadEvents(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty log after saving nil, got %d", len(got))
		}
	})
}
