package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/swarmgate/swarmgate/internal/config"
	"github.com/swarmgate/swarmgate/internal/domain/coordination"
	"github.com/swarmgate/swarmgate/internal/port/cache"
)

// analyticsCacheKey is the single cache entry for the aggregated read model.
// The learner deletes it synchronously on every recorded event.
const analyticsCacheKey = "analytics:v1"

// AnalyticsService aggregates the event log and pattern store into the
// read model served by the query surface. Results are cached with a TTL and
// concurrent recomputes are collapsed through singleflight.
type AnalyticsService struct {
	learner *LearnerService
	cache   cache.Cache
	cfg     config.Analytics
	group   singleflight.Group
}

// NewAnalyticsService creates an AnalyticsService. cache may be nil, in which
// case every call recomputes.
func NewAnalyticsService(learner *LearnerService, c cache.Cache, cfg config.Analytics) *AnalyticsService {
	return &AnalyticsService{learner: learner, cache: c, cfg: cfg}
}

// GetAnalytics returns the aggregated statistics, from cache when fresh.
func (s *AnalyticsService) GetAnalytics(ctx context.Context) (*coordination.Analytics, error) {
	if s.cache != nil {
		if data, found, err := s.cache.Get(ctx, analyticsCacheKey); err == nil && found {
			var a coordination.Analytics
			if err := json.Unmarshal(data, &a); err == nil {
				return &a, nil
			}
			// Undecodable cache entry: drop it and recompute.
			_ = s.cache.Delete(ctx, analyticsCacheKey)
		}
	}

	v, err, _ := s.group.Do(analyticsCacheKey, func() (any, error) {
		a := s.compute()
		if s.cache != nil {
			data, err := json.Marshal(a)
			if err != nil {
				return nil, fmt.Errorf("encode analytics: %w", err)
			}
			_ = s.cache.Set(ctx, analyticsCacheKey, data, s.cfg.CacheTTL)
		}
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*coordination.Analytics), nil
}

// compute builds the read model from learner snapshots.
func (s *AnalyticsService) compute() *coordination.Analytics {
	events := s.learner.Events()
	patterns := s.learner.Patterns()

	a := &coordination.Analytics{
		DomainStats:   make(map[string]coordination.GroupStats),
		StrategyStats: make(map[string]coordination.GroupStats),
	}

	starts := 0
	durationSum := 0.0
	durationCount := 0
	domainAgg := make(map[string]*groupAccumulator)
	strategyAgg := make(map[string]*groupAccumulator)

	for i := range events {
		ev := &events[i]
		if ev.Type == coordination.EventStart {
			starts++
			continue
		}
		a.Summary.TotalCoordinations++
		success := ev.Success != nil && *ev.Success
		if success {
			a.Summary.Completed++
		} else {
			a.Summary.Failed++
		}
		if ev.Duration != nil {
			durationSum += *ev.Duration
			durationCount++
		}
		for _, d := range ev.Domains {
			accumulate(domainAgg, d, success, ev.Duration)
		}
		if ev.Strategy != "" {
			accumulate(strategyAgg, string(ev.Strategy), success, ev.Duration)
		}
	}

	a.Summary.InFlight = starts - a.Summary.TotalCoordinations
	if a.Summary.InFlight < 0 {
		a.Summary.InFlight = 0 // orphan terminals can outnumber starts
	}
	if a.Summary.TotalCoordinations > 0 {
		a.Summary.SuccessRate = float64(a.Summary.Completed) / float64(a.Summary.TotalCoordinations)
	}
	if durationCount > 0 {
		a.Summary.AvgDuration = durationSum / float64(durationCount)
	}
	for k, agg := range domainAgg {
		a.DomainStats[k] = agg.stats()
	}
	for k, agg := range strategyAgg {
		a.StrategyStats[k] = agg.stats()
	}
	a.TopPatterns = topPatterns(patterns, s.cfg.TopPatterns)
	return a
}

type groupAccumulator struct {
	count       int
	successes   int
	durationSum float64
	durations   int
}

func accumulate(m map[string]*groupAccumulator, key string, success bool, duration *float64) {
	agg := m[key]
	if agg == nil {
		agg = &groupAccumulator{}
		m[key] = agg
	}
	agg.count++
	if success {
		agg.successes++
	}
	if duration != nil {
		agg.durationSum += *duration
		agg.durations++
	}
}

func (g *groupAccumulator) stats() coordination.GroupStats {
	s := coordination.GroupStats{Count: g.count}
	if g.count > 0 {
		s.SuccessRate = float64(g.successes) / float64(g.count)
	}
	if g.durations > 0 {
		s.AvgDuration = g.durationSum / float64(g.durations)
	}
	return s
}

// topPatterns ranks patterns by successRate*confidence and returns the top n.
func topPatterns(patterns map[string]coordination.Pattern, n int) []coordination.Pattern {
	ranked := make([]coordination.Pattern, 0, len(patterns))
	for _, p := range patterns {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		si := ranked[i].SuccessRate * ranked[i].Confidence
		sj := ranked[j].SuccessRate * ranked[j].Confidence
		if si != sj {
			return si > sj
		}
		return ranked[i].UsageCount > ranked[j].UsageCount
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
