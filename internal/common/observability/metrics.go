package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Metrics records job and ranking instruments through an OpenTelemetry meter
// exported on the default Prometheus registry.
type Metrics struct {
	provider    *metric.MeterProvider
	jobCounter  otelmetric.Int64Counter
	jobDuration otelmetric.Float64Histogram
	scores      otelmetric.Int64Histogram
}

func NewMetrics(serviceName string) (*Metrics, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	m := &Metrics{provider: provider}
	if m.jobCounter, err = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	); err != nil {
		return nil, err
	}
	if m.jobDuration, err = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.scores, err = meter.Int64Histogram(
		"recommendations.score",
		otelmetric.WithDescription("Composite score of each returned recommendation"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) RecordJob(ctx context.Context, taskType, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	)
	m.jobCounter.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (m *Metrics) RecordScore(ctx context.Context, score int, tier string) {
	if m == nil {
		return
	}
	m.scores.Record(ctx, int64(score), otelmetric.WithAttributes(attribute.String("tier", tier)))
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
