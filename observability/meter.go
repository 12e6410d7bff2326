package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// newMeterProvider pushes metrics over OTLP/HTTP every cfg.MetricInterval.
func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// PipelineMetrics holds the instruments recorded by a pipeline run.
type PipelineMetrics struct {
	segmentTotal       metric.Int64Counter
	segmentDuration    metric.Float64Histogram
	generationDuration metric.Float64Histogram
	transcribeDuration metric.Float64Histogram
	gateTotal          metric.Int64Counter
	errorTotal         metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	segmentTotal, err := meter.Int64Counter("longscribe.segments",
		metric.WithDescription("Segments processed by the rewrite loop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating longscribe.segments counter: %w", err)
	}

	segmentDuration, err := meter.Float64Histogram("longscribe.segment.duration",
		metric.WithDescription("Wall time spent per segment"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating longscribe.segment.duration histogram: %w", err)
	}

	generationDuration, err := meter.Float64Histogram("longscribe.generation.duration",
		metric.WithDescription("Latency of text generation calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating longscribe.generation.duration histogram: %w", err)
	}

	transcribeDuration, err := meter.Float64Histogram("longscribe.transcription.duration",
		metric.WithDescription("Time from submit to transcript fetch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating longscribe.transcription.duration histogram: %w", err)
	}

	gateTotal, err := meter.Int64Counter("longscribe.confirmation_gates",
		metric.WithDescription("Runs halted for speaker confirmation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating longscribe.confirmation_gates counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("longscribe.errors",
		metric.WithDescription("Fatal errors by code and stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating longscribe.errors counter: %w", err)
	}

	return &PipelineMetrics{
		segmentTotal:       segmentTotal,
		segmentDuration:    segmentDuration,
		generationDuration: generationDuration,
		transcribeDuration: transcribeDuration,
		gateTotal:          gateTotal,
		errorTotal:         errorTotal,
	}, nil
}

// RecordSegment records one processed segment with its status.
func (m *PipelineMetrics) RecordSegment(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.segmentTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.segmentDuration.Record(ctx, duration.Seconds())
}

// RecordGeneration records the latency of one generation call.
func (m *PipelineMetrics) RecordGeneration(ctx context.Context, provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

// RecordTranscription records the end-to-end transcription latency.
func (m *PipelineMetrics) RecordTranscription(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.transcribeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordGate counts a halt for speaker confirmation.
func (m *PipelineMetrics) RecordGate(ctx context.Context) {
	if m == nil {
		return
	}
	m.gateTotal.Add(ctx, 1)
}

// RecordError records a fatal error by code and stage.
func (m *PipelineMetrics) RecordError(ctx context.Context, code, stage string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("stage", stage),
	))
}
