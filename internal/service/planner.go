package service

import (
	"sort"

	"github.com/swarmgate/swarmgate/internal/config"
	"github.com/swarmgate/swarmgate/internal/domain/coordination"
	"github.com/swarmgate/swarmgate/internal/domain/work"
)

// PlannerService turns an admitted list of work items into an ordered batch
// plan under the resource budget.
type PlannerService struct {
	cfg         config.Planner
	strategyCfg config.Strategy
}

// NewPlannerService creates a PlannerService from config.
func NewPlannerService(cfg config.Planner, strategyCfg config.Strategy) *PlannerService {
	return &PlannerService{cfg: cfg, strategyCfg: strategyCfg}
}

// Plan orders items by (priority, dependency count, duration), packs them
// greedily into batches, assigns a strategy to the batch list, and estimates
// total time. Two items where one depends on the other's kind never share a
// batch.
func (s *PlannerService) Plan(items []work.Item, budget work.Budget) coordination.Plan {
	if len(items) == 0 {
		return coordination.Plan{Strategy: coordination.StrategyDirect}
	}

	ordered := make([]work.Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := &ordered[i], &ordered[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if len(a.Dependencies) != len(b.Dependencies) {
			return len(a.Dependencies) < len(b.Dependencies)
		}
		return a.EstimatedDuration < b.EstimatedDuration
	})

	batchSize := s.effectiveBatchSize(ordered, budget)

	var batches [][]work.Item
	var batch []work.Item
	kindsInBatch := make(map[string]bool)

	for _, item := range ordered {
		if len(batch) >= batchSize || dependsOnBatch(item, kindsInBatch) {
			batches = append(batches, batch)
			batch = nil
			kindsInBatch = make(map[string]bool)
		}
		batch = append(batch, item)
		kindsInBatch[item.Kind] = true
	}
	batches = append(batches, batch)

	strategy := s.assignStrategy(batches, len(ordered))
	return coordination.Plan{
		Batches:            batches,
		Strategy:           strategy,
		EstimatedTotalTime: s.estimateTotalTime(batches),
		Degraded:           strategy == coordination.StrategyDegraded,
	}
}

// effectiveBatchSize applies the complexity adjustment to the budgeted batch
// size: high domain breadth shrinks batches by one, clamped to the configured
// floor and complex ceiling.
func (s *PlannerService) effectiveBatchSize(items []work.Item, budget work.Budget) int {
	size := budget.MaxBatchSize
	if size <= 0 {
		size = s.cfg.MaxBatchSize
	}
	if len(work.Domains(items)) >= s.strategyCfg.DomainBreadth {
		size--
		if size > s.cfg.MaxComplexBatchSize {
			size = s.cfg.MaxComplexBatchSize
		}
		if size < s.cfg.MinBatchSize {
			size = s.cfg.MinBatchSize
		}
	}
	return size
}

// dependsOnBatch reports whether item declares a dependency on a kind already
// placed in the current batch.
func dependsOnBatch(item work.Item, kinds map[string]bool) bool {
	for _, dep := range item.Dependencies {
		if kinds[dep] {
			return true
		}
	}
	return false
}

// assignStrategy maps the batch shape to a strategy: one small batch runs
// parallel, anything within the strategic ceiling runs strategic, and the
// rest degrades.
func (s *PlannerService) assignStrategy(batches [][]work.Item, total int) coordination.Strategy {
	if len(batches) == 1 && total <= s.strategyCfg.ParallelMax {
		return coordination.StrategyParallel
	}
	if total <= s.strategyCfg.StrategicMax {
		return coordination.StrategyStrategic
	}
	return coordination.StrategyDegraded
}

// estimateTotalTime sums per-batch estimates plus inter-batch overhead.
// A batch takes as long as its slowest item plus per-item coordination cost.
func (s *PlannerService) estimateTotalTime(batches [][]work.Item) float64 {
	total := 0.0
	for _, batch := range batches {
		longest := 0.0
		for i := range batch {
			if batch[i].EstimatedDuration > longest {
				longest = batch[i].EstimatedDuration
			}
		}
		total += longest + float64(len(batch))*s.cfg.CoordinationOverhead.Seconds()
	}
	if n := len(batches); n > 1 {
		total += float64(n-1) * s.cfg.InterBatchOverhead.Seconds()
	}
	return total
}
