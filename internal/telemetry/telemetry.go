// Package telemetry wires the allocator's counters into OpenTelemetry's
// metrics API. Every call is a safe no-op until a real MeterProvider is
// registered (via otel.SetMeterProvider in cmd/numtracker's serve command),
// so tests and CLI one-shot commands never need to care about it.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func instrumentAttr(name string) attribute.KeyValue {
	return attribute.String("instrument", name)
}

// AllocatorMetrics counts successful allocations, claim retries and
// fallback tracker warnings.
type AllocatorMetrics struct {
	allocations  metric.Int64Counter
	retries      metric.Int64Counter
	trackerWarns metric.Int64Counter
}

// NewAllocatorMetrics creates the allocator's counters against the global
// otel meter provider.
func NewAllocatorMetrics() (*AllocatorMetrics, error) {
	meter := otel.Meter("github.com/example/numtracker/allocator")

	allocations, err := meter.Int64Counter(
		"numtracker.allocator.allocations",
		metric.WithDescription("scan numbers successfully allocated"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter(
		"numtracker.allocator.retries",
		metric.WithDescription("allocation attempts retried after a tracker race"),
	)
	if err != nil {
		return nil, err
	}

	trackerWarns, err := meter.Int64Counter(
		"numtracker.allocator.tracker_warnings",
		metric.WithDescription("fallback tracker mismatches or errors logged but not fatal to allocation"),
	)
	if err != nil {
		return nil, err
	}

	return &AllocatorMetrics{allocations: allocations, retries: retries, trackerWarns: trackerWarns}, nil
}

func (m *AllocatorMetrics) RecordAllocation(ctx context.Context, instrumentName string) {
	if m == nil {
		return
	}
	m.allocations.Add(ctx, 1, metric.WithAttributes(instrumentAttr(instrumentName)))
}

func (m *AllocatorMetrics) RecordRetry(ctx context.Context, instrumentName string) {
	if m == nil {
		return
	}
	m.retries.Add(ctx, 1, metric.WithAttributes(instrumentAttr(instrumentName)))
}

func (m *AllocatorMetrics) RecordTrackerWarning(ctx context.Context, instrumentName string) {
	if m == nil {
		return
	}
	m.trackerWarns.Add(ctx, 1, metric.WithAttributes(instrumentAttr(instrumentName)))
}
