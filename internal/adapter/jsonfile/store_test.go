package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
	"github.com/swarmgate/swarmgate/internal/port/statestore"
)

func TestCompliance(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	statestore.RunComplianceTests(t, s)
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"events.json", "patterns.json", "insights.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	events, err := s.LoadEvents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty events from corrupt file, got %d", len(events))
	}
	patterns, err := s.LoadPatterns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 0 {
		t.Fatalf("expected empty patterns from corrupt file, got %d", len(patterns))
	}
	insights, err := s.LoadInsights(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(insights) != 0 {
		t.Fatalf("expected empty insights from corrupt file, got %d", len(insights))
	}
}

func TestSaveSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	key := coordination.NewPatternKey([]string{"testing"}, 2, coordination.StrategyParallel)
	if err := s.SavePatterns(ctx, map[string]coordination.Pattern{
		key.String(): {Domains: []string{"testing"}, ItemCount: 2, Strategy: coordination.StrategyParallel, UsageCount: 1},
	}); err != nil {
		t.Fatal(err)
	}

	// Reopen over the same directory.
	s2, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	patterns, err := s2.LoadPatterns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, found := patterns[key.String()]; !found {
		t.Fatalf("pattern missing after reopen: %v", patterns)
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveEvents(context.Background(), []coordination.Event{{ID: "x", Type: coordination.EventStart}}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "events.json" {
			t.Fatalf("unexpected file left behind: %s", e.Name())
		}
	}
}
