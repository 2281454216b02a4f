// Package notifier defines the port interface for broadcasting coordination
// lifecycle events to external observers.
package notifier

import (
	"context"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

// Notifier publishes coordination events as they are recorded. Publish
// failures are the notifier's problem to report; the engine never blocks a
// decision on delivery.
type Notifier interface {
	Publish(ctx context.Context, event coordination.Event) error
}

// Noop is a Notifier that discards every event.
type Noop struct{}

// Publish implements Notifier.
func (Noop) Publish(context.Context, coordination.Event) error { return nil }
