package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/swarmgate/swarmgate/internal/adapter/memory"
	"github.com/swarmgate/swarmgate/internal/config"
	"github.com/swarmgate/swarmgate/internal/domain"
	"github.com/swarmgate/swarmgate/internal/domain/coordination"
	"github.com/swarmgate/swarmgate/internal/domain/work"
)

func newCoordinator(t *testing.T) (*CoordinatorService, *time.Time) {
	t.Helper()
	cfg := config.Defaults()
	store := memory.NewStore()

	learner, err := NewLearnerService(context.Background(), store, nil, nil, nil, cfg.Learner)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	learner.now = func() time.Time { return now }

	return NewCoordinatorService(
		NewAdmissionService(cfg.Admission),
		NewStrategyService(cfg.Strategy),
		NewPlannerService(cfg.Planner, cfg.Strategy),
		learner,
		NewInsightService(learner, store, cfg.Insights),
		NewAnalyticsService(learner, nil, cfg.Analytics),
		nil,
	), &now
}

func TestCoordinateProducesPlan(t *testing.T) {
	c, _ := newCoordinator(t)

	plan, err := c.Coordinate(context.Background(), []work.Item{
		item("lint", work.PriorityHigh, 1),
		item("test", work.PriorityHigh, 2),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if plan.ItemCount() != 2 {
		t.Fatalf("plan lost items: %d of 2", plan.ItemCount())
	}
	if plan.Strategy != coordination.StrategyParallel {
		t.Fatalf("strategy = %s, want parallel", plan.Strategy)
	}
	if plan.Degraded {
		t.Fatal("healthy request must not degrade")
	}
}

func TestCoordinateRejectsInvalidItems(t *testing.T) {
	c, _ := newCoordinator(t)

	_, err := c.Coordinate(context.Background(), []work.Item{
		{Kind: "", Priority: work.PriorityHigh, Domain: "backend"},
	}, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCoordinateRejectsOverCapacity(t *testing.T) {
	c, _ := newCoordinator(t)

	var items []work.Item
	for i := 0; i < 15; i++ {
		items = append(items, item("task", work.PriorityMedium, 1))
	}
	_, err := c.Coordinate(context.Background(), items, nil)

	var admErr *AdmissionError
	if !errors.As(err, &admErr) {
		t.Fatalf("expected *AdmissionError, got %v", err)
	}
	if admErr.Decision.Reason != ReasonOverCapacity {
		t.Fatalf("reason = %s, want over_capacity", admErr.Decision.Reason)
	}
}

func TestCoordinateDegradesOnBudgetViolation(t *testing.T) {
	c, _ := newCoordinator(t)

	budget := work.DefaultBudget()
	budget.CurrentResourceUsage = 0.9

	plan, err := c.Coordinate(context.Background(), []work.Item{
		item("lint", work.PriorityHigh, 1),
	}, &budget)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Strategy != coordination.StrategyDegraded || !plan.Degraded {
		t.Fatalf("expected degraded plan under budget violation, got %+v", plan)
	}
}

func TestWindowBlocksNewCoordinations(t *testing.T) {
	c, now := newCoordinator(t)
	ctx := context.Background()

	id, err := c.ReportStart(ctx, "", 2, []string{"testing"}, coordination.StrategyParallel)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Coordinate(ctx, []work.Item{item("lint", work.PriorityHigh, 1)}, nil)
	var admErr *AdmissionError
	if !errors.As(err, &admErr) || admErr.Decision.Reason != ReasonBusy {
		t.Fatalf("expected busy rejection while window open, got %v", err)
	}

	*now = now.Add(time.Second)
	if _, err := c.ReportComplete(ctx, id, true, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Coordinate(ctx, []work.Item{item("lint", work.PriorityHigh, 1)}, nil); err != nil {
		t.Fatalf("expected admission after completion, got %v", err)
	}
}

func TestOrphanCompletionLeavesWindowOpen(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	if _, err := c.ReportStart(ctx, "real", 2, []string{"testing"}, coordination.StrategyParallel); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ReportComplete(ctx, "phantom", true, ""); !errors.Is(err, domain.ErrOrphanCompletion) {
		t.Fatalf("expected ErrOrphanCompletion, got %v", err)
	}

	if d := c.CanAdmit(1); d.Allowed || d.Reason != ReasonBusy {
		t.Fatalf("orphan must not close the real window, got %+v", d)
	}
}

func TestFullLifecycleFeedsAnalyticsAndRecommendations(t *testing.T) {
	c, now := newCoordinator(t)
	ctx := context.Background()

	items := []work.Item{
		item("unit-tests", work.PriorityHigh, 1),
		item("integration-tests", work.PriorityHigh, 2),
	}
	for i := 0; i < len(items); i++ {
		items[i].Domain = "testing"
	}

	plan, err := c.Coordinate(ctx, items, nil)
	if err != nil {
		t.Fatal(err)
	}

	id, err := c.ReportStart(ctx, "", plan.ItemCount(), work.Domains(items), plan.Strategy)
	if err != nil {
		t.Fatal(err)
	}
	*now = now.Add(2 * time.Second)
	if _, err := c.ReportComplete(ctx, id, true, ""); err != nil {
		t.Fatal(err)
	}

	a, err := c.GetAnalytics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a.Summary.Completed != 1 || a.Summary.SuccessRate != 1.0 {
		t.Fatalf("analytics did not record the completion: %+v", a.Summary)
	}

	rec := c.Recommend([]string{"testing"}, 2)
	if rec.RecommendedStrategy == nil || *rec.RecommendedStrategy != coordination.StrategyParallel {
		t.Fatalf("expected parallel recommendation from history, got %+v", rec)
	}
	if rec.SuccessProbability != 1.0 {
		t.Fatalf("success probability = %v, want 1.0", rec.SuccessProbability)
	}
}
