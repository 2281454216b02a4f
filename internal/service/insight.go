package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/swarmgate/swarmgate/internal/config"
	"github.com/swarmgate/swarmgate/internal/domain"
	"github.com/swarmgate/swarmgate/internal/domain/coordination"
	"github.com/swarmgate/swarmgate/internal/port/statestore"
)

// Insight detection thresholds. These describe what the engine considers
// noteworthy, not how it coordinates, so they stay constants rather than
// config tunables.
const (
	reliabilityMinUsage      = 3
	reliabilityMaxSuccess    = 0.7
	highPerformerMinSuccess  = 0.9
	highPerformerMinUsage    = 2
	degradationMaxSuccess    = 0.8
	underusedMinSuccess      = 0.85
	underusedMaxShare        = 0.1
	underusedMinCompletions  = 10
	recommendMaxCountDelta   = 2
	recommendCountDeltaScale = 10.0
)

// InsightService derives advisory insights from the pattern store and
// recommends strategies for upcoming coordination requests. It is a read-only
// consumer of the learner; its only side effect is pruning expired insights.
type InsightService struct {
	learner *LearnerService
	store   statestore.Store
	cfg     config.Insights

	now func() time.Time // for testing
}

// NewInsightService creates an InsightService.
func NewInsightService(learner *LearnerService, store statestore.Store, cfg config.Insights) *InsightService {
	return &InsightService{learner: learner, store: store, cfg: cfg, now: time.Now}
}

// GenerateInsights regenerates the derived insight set from the pattern
// store, prunes insights past their TTL, and persists the refreshed list.
// A regenerated insight for a (category, subject) pair already on file keeps
// that entry's id and creation time, so repeated passes over an unchanged
// pattern store return the same list instead of accumulating copies.
// Conditions no longer detected linger until their TTL.
func (s *InsightService) GenerateInsights(ctx context.Context) ([]coordination.Insight, error) {
	now := s.now()
	patterns := s.learner.Patterns()

	existing, err := s.store.LoadInsights(ctx)
	if err != nil {
		return nil, fmt.Errorf("load insights: %w", err)
	}
	prior := make(map[string]coordination.Insight, len(existing))
	for i := range existing {
		if !existing[i].Expired(now, s.cfg.TTL) {
			prior[insightKey(existing[i])] = existing[i]
		}
	}

	var generated []coordination.Insight
	generated = append(generated, s.reliabilityInsights(patterns, now)...)
	if best := s.highPerformerInsight(patterns, now); best != nil {
		generated = append(generated, *best)
	}
	if deg := s.degradationInsight(patterns, now); deg != nil {
		generated = append(generated, *deg)
	}
	generated = append(generated, s.underutilizedInsights(patterns, now)...)

	insights := make([]coordination.Insight, 0, len(generated)+len(prior))
	seen := make(map[string]bool, len(generated))
	for _, g := range generated {
		key := insightKey(g)
		if p, ok := prior[key]; ok {
			g.ID = p.ID
			g.CreatedAt = p.CreatedAt
		}
		insights = append(insights, g)
		seen[key] = true
	}
	for i := range existing {
		in := existing[i]
		if in.Expired(now, s.cfg.TTL) || seen[insightKey(in)] {
			continue
		}
		insights = append(insights, in)
	}

	if err := s.store.SaveInsights(ctx, insights); err != nil {
		return insights, fmt.Errorf("%w: save insights: %w", domain.ErrPersistence, err)
	}
	return insights, nil
}

// insightKey identifies what an insight is about, independent of when it was
// generated.
func insightKey(in coordination.Insight) string {
	return string(in.Category) + "|" + strings.Join(in.AppliesTo, ",")
}

// reliabilityInsights flags patterns that keep getting used despite failing.
func (s *InsightService) reliabilityInsights(patterns map[string]coordination.Pattern, now time.Time) []coordination.Insight {
	var out []coordination.Insight
	for _, p := range sortedPatterns(patterns) {
		if p.UsageCount >= reliabilityMinUsage && p.SuccessRate < reliabilityMaxSuccess {
			out = append(out, coordination.Insight{
				ID:             uuid.NewString(),
				Category:       coordination.InsightReliability,
				Description:    fmt.Sprintf("pattern %s succeeds only %.0f%% of the time over %d uses", p.Key(), p.SuccessRate*100, p.UsageCount),
				Recommendation: "reduce batch size or switch strategy for this domain combination",
				ImpactScore:    1 - p.SuccessRate,
				Confidence:     p.Confidence,
				CreatedAt:      now,
				AppliesTo:      []string{p.Key().String()},
			})
		}
	}
	return out
}

// highPerformerInsight surfaces the single best proven pattern.
func (s *InsightService) highPerformerInsight(patterns map[string]coordination.Pattern, now time.Time) *coordination.Insight {
	var best *coordination.Pattern
	bestScore := 0.0
	for _, p := range sortedPatterns(patterns) {
		if p.SuccessRate <= highPerformerMinSuccess || p.UsageCount < highPerformerMinUsage {
			continue
		}
		score := p.SuccessRate * p.Confidence
		if best == nil || score > bestScore {
			copied := p
			best = &copied
			bestScore = score
		}
	}
	if best == nil {
		return nil
	}
	return &coordination.Insight{
		ID:             uuid.NewString(),
		Category:       coordination.InsightOptimization,
		Description:    fmt.Sprintf("pattern %s is a proven high performer (%.0f%% success over %d uses)", best.Key(), best.SuccessRate*100, best.UsageCount),
		Recommendation: "prefer this composition for similar requests",
		ImpactScore:    bestScore,
		Confidence:     best.Confidence,
		CreatedAt:      now,
		AppliesTo:      []string{best.Key().String()},
	}
}

// degradationInsight warns when recently used patterns are trending unreliable.
func (s *InsightService) degradationInsight(patterns map[string]coordination.Pattern, now time.Time) *coordination.Insight {
	var recent []coordination.Pattern
	sum := 0.0
	for _, p := range sortedPatterns(patterns) {
		if now.Sub(p.LastUsed) <= s.cfg.RecentWindow {
			recent = append(recent, p)
			sum += p.SuccessRate
		}
	}
	if len(recent) == 0 {
		return nil
	}
	avg := sum / float64(len(recent))
	if avg >= degradationMaxSuccess {
		return nil
	}
	keys := make([]string, len(recent))
	for i := range recent {
		keys[i] = recent[i].Key().String()
	}
	return &coordination.Insight{
		ID:             uuid.NewString(),
		Category:       coordination.InsightMonitoring,
		Description:    fmt.Sprintf("patterns used in the last %s average %.0f%% success", s.cfg.RecentWindow, avg*100),
		Recommendation: "investigate recent coordination failures before scaling up",
		ImpactScore:    degradationMaxSuccess - avg,
		Confidence:     0.6,
		CreatedAt:      now,
		AppliesTo:      keys,
	}
}

// underutilizedInsights flags strategies that work well but are rarely chosen.
func (s *InsightService) underutilizedInsights(patterns map[string]coordination.Pattern, now time.Time) []coordination.Insight {
	total := 0
	usage := make(map[coordination.Strategy]int)
	successSum := make(map[coordination.Strategy]float64)
	for _, p := range patterns {
		total += p.UsageCount
		usage[p.Strategy] += p.UsageCount
		successSum[p.Strategy] += p.SuccessRate * float64(p.UsageCount)
	}
	if total <= underusedMinCompletions {
		return nil
	}

	strategies := make([]coordination.Strategy, 0, len(usage))
	for st := range usage {
		strategies = append(strategies, st)
	}
	sort.Slice(strategies, func(i, j int) bool { return strategies[i] < strategies[j] })

	var out []coordination.Insight
	for _, st := range strategies {
		count := usage[st]
		share := float64(count) / float64(total)
		rate := successSum[st] / float64(count)
		if rate > underusedMinSuccess && share < underusedMaxShare {
			out = append(out, coordination.Insight{
				ID:             uuid.NewString(),
				Category:       coordination.InsightOptimization,
				Description:    fmt.Sprintf("strategy %s succeeds %.0f%% of the time but handles only %.0f%% of coordinations", st, rate*100, share*100),
				Recommendation: fmt.Sprintf("consider routing more requests to the %s strategy", st),
				ImpactScore:    rate * (underusedMaxShare - share) / underusedMaxShare,
				Confidence:     0.5,
				CreatedAt:      now,
				AppliesTo:      []string{string(st)},
			})
		}
	}
	return out
}

// Recommend scores historical patterns against the requested domains and item
// count and returns the best match plus up to two alternatives. A request
// with no overlapping history yields a nil recommended strategy.
func (s *InsightService) Recommend(domains []string, itemCount int) coordination.Recommendation {
	patterns := s.learner.Patterns()

	type scored struct {
		pattern coordination.Pattern
		score   float64
	}
	var candidates []scored
	for _, p := range sortedPatterns(patterns) {
		delta := p.ItemCount - itemCount
		if delta < 0 {
			delta = -delta
		}
		if delta > recommendMaxCountDelta {
			continue
		}
		overlap := p.DomainOverlap(domains)
		if overlap == 0 {
			continue
		}
		countScore := 1 - float64(delta)/recommendCountDeltaScale
		candidates = append(candidates, scored{
			pattern: p,
			score:   overlap * p.Confidence * countScore,
		})
	}
	if len(candidates) == 0 {
		return coordination.Recommendation{}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	best := candidates[0]
	rec := coordination.Recommendation{
		RecommendedStrategy: &best.pattern.Strategy,
		Confidence:          best.pattern.Confidence,
		SuccessProbability:  best.pattern.SuccessRate,
		AvgDuration:         best.pattern.AvgDuration,
		BasedOn:             best.pattern.Key().String(),
	}
	for _, alt := range candidates[1:] {
		if len(rec.Alternatives) == 2 {
			break
		}
		rec.Alternatives = append(rec.Alternatives, coordination.Alternative{
			Strategy:    alt.pattern.Strategy,
			Domains:     alt.pattern.Domains,
			ItemCount:   alt.pattern.ItemCount,
			Score:       alt.score,
			SuccessRate: alt.pattern.SuccessRate,
		})
	}
	return rec
}

// sortedPatterns returns patterns in deterministic key order so generated
// insights and recommendation tie-breaks are stable across runs.
func sortedPatterns(patterns map[string]coordination.Pattern) []coordination.Pattern {
	keys := make([]string, 0, len(patterns))
	for k := range patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]coordination.Pattern, 0, len(keys))
	for _, k := range keys {
		out = append(out, patterns[k])
	}
	return out
}
