// Package observability provides a metrics extension that records
// dispatch lifecycle counters via OpenTelemetry.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/laterq/laterq/hook"
)

// meterName is the instrumentation scope name for laterq metrics.
const meterName = "github.com/laterq/laterq"

// Compile-time interface checks.
var (
	_ hook.Extension     = (*MetricsExtension)(nil)
	_ hook.JobDispatched = (*MetricsExtension)(nil)
	_ hook.ScheduleFired = (*MetricsExtension)(nil)
)

// MetricsExtension records dispatch and schedule-fire counters. Register
// it with a hook.Registry to track delayed dispatch rates per queue and
// class, plus how far past due each job was when it moved.
type MetricsExtension struct {
	dispatched metric.Int64Counter
	lateness   metric.Float64Histogram
	fired      metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. If none is configured, noop instruments are used and the
// extension becomes a pass-through.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a specific MeterProvider
// for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// Create instruments once at construction time. OTel instruments are
	// safe for concurrent use. On error, the API returns noop instruments
	// so the extension degrades gracefully.
	dispatched, dErr := meter.Int64Counter(
		"laterq.delayed.dispatched",
		metric.WithDescription("Total delayed jobs moved to immediate queues"),
		metric.WithUnit("{job}"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	lateness, lErr := meter.Float64Histogram(
		"laterq.delayed.lateness",
		metric.WithDescription("Seconds between a job's due time and its dispatch"),
		metric.WithUnit("s"),
	)
	_ = lErr // noop fallback guaranteed by OTel API contract

	fired, fErr := meter.Int64Counter(
		"laterq.schedule.fired",
		metric.WithDescription("Total recurring schedule entries fired"),
		metric.WithUnit("{fire}"),
	)
	_ = fErr // noop fallback guaranteed by OTel API contract

	return &MetricsExtension{dispatched: dispatched, lateness: lateness, fired: fired}
}

// Name implements hook.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnJobDispatched implements hook.JobDispatched.
func (m *MetricsExtension) OnJobDispatched(ctx context.Context, queue, class string, _ []any, due time.Time) error {
	attrs := metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("class", class),
	)
	m.dispatched.Add(ctx, 1, attrs)
	m.lateness.Record(ctx, time.Since(due).Seconds(), attrs)
	return nil
}

// OnScheduleFired implements hook.ScheduleFired.
func (m *MetricsExtension) OnScheduleFired(ctx context.Context, entryName, queue, _ string) error {
	m.fired.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entry", entryName),
		attribute.String("queue", queue),
	))
	return nil
}
