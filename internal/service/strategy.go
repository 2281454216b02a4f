package service

import (
	"github.com/swarmgate/swarmgate/internal/config"
	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

// StrategyService maps request shape to a coordination strategy. Selection is
// a pure function of its inputs and the configured thresholds.
type StrategyService struct {
	cfg config.Strategy
}

// NewStrategyService creates a StrategyService from config.
func NewStrategyService(cfg config.Strategy) *StrategyService {
	return &StrategyService{cfg: cfg}
}

// Select picks a strategy for the given item count and domain spread.
// violatesConstraints comes from the admission check or the resource budget;
// either it or an item count beyond the strategic ceiling forces degraded
// coordination. Domain breadth escalates small requests to at least
// strategic: complexity from breadth outweighs raw count.
func (s *StrategyService) Select(itemCount int, domains []string, violatesConstraints bool) coordination.Strategy {
	if violatesConstraints || itemCount > s.cfg.StrategicMax {
		return coordination.StrategyDegraded
	}

	var strategy coordination.Strategy
	switch {
	case itemCount <= s.cfg.DirectMax:
		strategy = coordination.StrategyDirect
	case itemCount <= s.cfg.ParallelMax:
		strategy = coordination.StrategyParallel
	default:
		strategy = coordination.StrategyStrategic
	}

	if distinctCount(domains) >= s.cfg.DomainBreadth && strategyRank(strategy) < strategyRank(coordination.StrategyStrategic) {
		strategy = coordination.StrategyStrategic
	}
	return strategy
}

// distinctCount counts unique non-empty domain names.
func distinctCount(domains []string) int {
	seen := make(map[string]bool, len(domains))
	for _, d := range domains {
		if d != "" {
			seen[d] = true
		}
	}
	return len(seen)
}

// strategyRank orders strategies by escalation level.
func strategyRank(s coordination.Strategy) int {
	switch s {
	case coordination.StrategyDirect:
		return 0
	case coordination.StrategyParallel:
		return 1
	case coordination.StrategyStrategic:
		return 2
	case coordination.StrategyDegraded:
		return 3
	default:
		return 0
	}
}

// escalate returns the higher-ranked of two strategies.
func escalate(a, b coordination.Strategy) coordination.Strategy {
	if strategyRank(a) >= strategyRank(b) {
		return a
	}
	return b
}
