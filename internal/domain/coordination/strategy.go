// Package coordination defines the domain model for coordination plans,
// lifecycle events, learned patterns, and derived insights.
package coordination

// Strategy is the coarse execution approach chosen for a set of work items.
type Strategy string

const (
	// StrategyDirect runs a small number of items without batching overhead.
	StrategyDirect Strategy = "direct"
	// StrategyParallel runs a single batch of items concurrently.
	StrategyParallel Strategy = "parallel"
	// StrategyStrategic runs multiple ordered batches.
	StrategyStrategic Strategy = "strategic"
	// StrategyDegraded is the fallback when constraints are violated or the
	// request exceeds what the engine will coordinate at full capability.
	StrategyDegraded Strategy = "degraded"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyDirect, StrategyParallel, StrategyStrategic, StrategyDegraded:
		return true
	}
	return false
}
