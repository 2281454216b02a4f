// Package statestore defines the port interface for durably persisting the
// engine's three state collections: the event log, the pattern map, and the
// insight list. Each Save replaces the whole collection; the engine accepts
// the O(n) write cost in exchange for trivially correct durability.
package statestore

import (
	"context"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

// Store is the port interface for engine state persistence.
//
// Load methods must tolerate absent state (cold start) by returning empty
// collections, and must never fail on corrupt state: a backend that cannot
// decode what it finds starts empty rather than crashing the engine.
type Store interface {
	LoadEvents(ctx context.Context) ([]coordination.Event, error)
	SaveEvents(ctx context.Context, events []coordination.Event) error

	LoadPatterns(ctx context.Context) (map[string]coordination.Pattern, error)
	SavePatterns(ctx context.Context, patterns map[string]coordination.Pattern) error

	LoadInsights(ctx context.Context) ([]coordination.Insight, error)
	SaveInsights(ctx context.Context, insights []coordination.Insight) error
}
