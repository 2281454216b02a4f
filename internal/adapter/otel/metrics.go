// Package otel provides OpenTelemetry instruments and HTTP instrumentation
// for the coordination engine.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "swarmgate"

// Metrics holds all engine metric instruments.
type Metrics struct {
	PlansCreated           metric.Int64Counter
	AdmissionsRejected     metric.Int64Counter
	CoordinationsStarted   metric.Int64Counter
	CoordinationsCompleted metric.Int64Counter
	CoordinationsFailed    metric.Int64Counter
	OrphanCompletions      metric.Int64Counter
	CoordinationDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.PlansCreated, err = meter.Int64Counter("swarmgate.plans.created",
		metric.WithDescription("Number of coordination plans produced"))
	if err != nil {
		return nil, err
	}

	m.AdmissionsRejected, err = meter.Int64Counter("swarmgate.admissions.rejected",
		metric.WithDescription("Number of coordination requests rejected at admission"))
	if err != nil {
		return nil, err
	}

	m.CoordinationsStarted, err = meter.Int64Counter("swarmgate.coordinations.started",
		metric.WithDescription("Number of coordinations reported started"))
	if err != nil {
		return nil, err
	}

	m.CoordinationsCompleted, err = meter.Int64Counter("swarmgate.coordinations.completed",
		metric.WithDescription("Number of coordinations reported completed successfully"))
	if err != nil {
		return nil, err
	}

	m.CoordinationsFailed, err = meter.Int64Counter("swarmgate.coordinations.failed",
		metric.WithDescription("Number of coordinations reported failed"))
	if err != nil {
		return nil, err
	}

	m.OrphanCompletions, err = meter.Int64Counter("swarmgate.coordinations.orphans",
		metric.WithDescription("Number of terminal events without a matching start"))
	if err != nil {
		return nil, err
	}

	m.CoordinationDuration, err = meter.Float64Histogram("swarmgate.coordination.duration_seconds",
		metric.WithDescription("Coordination duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
