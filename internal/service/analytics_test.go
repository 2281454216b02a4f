package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/swarmgate/swarmgate/internal/config"
	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

func TestGetAnalyticsAggregatesEventLog(t *testing.T) {
	learner, _, now := newTestLearner(t)
	ctx := context.Background()

	runCoordination(t, learner, now, []string{"testing"}, 2, coordination.StrategyParallel, 1.0, true)
	runCoordination(t, learner, now, []string{"testing"}, 2, coordination.StrategyParallel, 3.0, true)
	runCoordination(t, learner, now, []string{"backend"}, 3, coordination.StrategyParallel, 2.0, false)
	// One coordination still in flight.
	if _, err := learner.ReportStart(ctx, "", 1, []string{"docs"}, coordination.StrategyDirect); err != nil {
		t.Fatal(err)
	}

	svc := NewAnalyticsService(learner, nil, config.Defaults().Analytics)
	a, err := svc.GetAnalytics(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if a.Summary.TotalCoordinations != 3 || a.Summary.Completed != 2 || a.Summary.Failed != 1 {
		t.Fatalf("summary counts wrong: %+v", a.Summary)
	}
	if a.Summary.InFlight != 1 {
		t.Fatalf("in flight = %d, want 1", a.Summary.InFlight)
	}
	if diff := a.Summary.SuccessRate - 2.0/3.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("success rate = %v, want 2/3", a.Summary.SuccessRate)
	}
	if diff := a.Summary.AvgDuration - 2.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("avg duration = %v, want 2.0", a.Summary.AvgDuration)
	}

	testStats := a.DomainStats["testing"]
	if testStats.Count != 2 || testStats.SuccessRate != 1.0 || testStats.AvgDuration != 2.0 {
		t.Fatalf("testing domain stats wrong: %+v", testStats)
	}
	backend := a.DomainStats["backend"]
	if backend.Count != 1 || backend.SuccessRate != 0 {
		t.Fatalf("backend domain stats wrong: %+v", backend)
	}

	parallel := a.StrategyStats[string(coordination.StrategyParallel)]
	if parallel.Count != 3 {
		t.Fatalf("parallel strategy count = %d, want 3", parallel.Count)
	}

	if len(a.TopPatterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(a.TopPatterns))
	}
	if a.TopPatterns[0].Key().String() != "testing_2_parallel" {
		t.Fatalf("top pattern = %s, want testing_2_parallel", a.TopPatterns[0].Key())
	}
}

func TestGetAnalyticsEmptyLog(t *testing.T) {
	learner, _, _ := newTestLearner(t)
	svc := NewAnalyticsService(learner, nil, config.Defaults().Analytics)

	a, err := svc.GetAnalytics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.Summary.TotalCoordinations != 0 || a.Summary.SuccessRate != 0 || a.Summary.AvgDuration != 0 {
		t.Fatalf("empty log must produce zero summary, got %+v", a.Summary)
	}
	if len(a.TopPatterns) != 0 {
		t.Fatalf("expected no patterns, got %+v", a.TopPatterns)
	}
}

func TestGetAnalyticsServesFromCache(t *testing.T) {
	learner, _, _ := newTestLearner(t)
	c := newFakeCache()
	svc := NewAnalyticsService(learner, c, config.Defaults().Analytics)
	ctx := context.Background()

	cached := coordination.Analytics{}
	cached.Summary.TotalCoordinations = 99
	data, err := json.Marshal(&cached)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, analyticsCacheKey, data, 0); err != nil {
		t.Fatal(err)
	}

	a, err := svc.GetAnalytics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a.Summary.TotalCoordinations != 99 {
		t.Fatalf("expected the cached aggregate, got %+v", a.Summary)
	}
}

func TestGetAnalyticsPopulatesCacheOnMiss(t *testing.T) {
	learner, _, _ := newTestLearner(t)
	c := newFakeCache()
	svc := NewAnalyticsService(learner, c, config.Defaults().Analytics)
	ctx := context.Background()

	if _, err := svc.GetAnalytics(ctx); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := c.Get(ctx, analyticsCacheKey); !found {
		t.Fatal("expected the computed aggregate to be cached")
	}
}

func TestGetAnalyticsRecoversFromCorruptCacheEntry(t *testing.T) {
	learner, _, _ := newTestLearner(t)
	c := newFakeCache()
	svc := NewAnalyticsService(learner, c, config.Defaults().Analytics)
	ctx := context.Background()

	if err := c.Set(ctx, analyticsCacheKey, []byte("{not json"), 0); err != nil {
		t.Fatal(err)
	}

	a, err := svc.GetAnalytics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a.Summary.TotalCoordinations != 0 {
		t.Fatalf("expected a fresh compute, got %+v", a.Summary)
	}
}
