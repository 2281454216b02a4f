// Package nats implements the notifier port using NATS JetStream, publishing
// coordination lifecycle events for external observers (dashboards, the agent
// runtime, audit consumers).
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

const streamName = "SWARMGATE"

// Notifier implements notifier.Notifier over a JetStream stream.
type Notifier struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect establishes a connection to NATS and ensures the coordination
// stream exists.
func Connect(ctx context.Context, url string) (*Notifier, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"coordination.>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName)
	return &Notifier{nc: nc, js: js}, nil
}

// Publish sends the event to coordination.<type> as JSON.
func (n *Notifier) Publish(ctx context.Context, event coordination.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	subject := "coordination." + string(event.Type)
	if _, err := n.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Close shuts down the NATS connection.
func (n *Notifier) Close() error {
	n.nc.Close()
	return nil
}
