package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/kbukum/longscribe/logger"
)

// Config is the telemetry section of the application config.
type Config struct {
	// Endpoint is the OTLP HTTP collector host:port. Empty disables export.
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	// MetricInterval is the metric export interval.
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Enabled reports whether an exporter endpoint is configured.
func (c Config) Enabled() bool { return c.Endpoint != "" }

// Telemetry bundles the pipeline instruments with the shutdown hook of the
// providers that back them.
type Telemetry struct {
	Metrics  *PipelineMetrics
	shutdown []func(context.Context) error
}

// Shutdown flushes and stops the exporters.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for _, fn := range t.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Setup initializes tracing and metrics for one process. With no endpoint the
// global no-op providers stay in place and the returned instruments record
// into a no-op meter.
func Setup(ctx context.Context, cfg Config, id Identity) (*Telemetry, error) {
	cfg.ApplyDefaults()

	if !cfg.Enabled() {
		metrics, err := NewPipelineMetrics(noop.NewMeterProvider().Meter(id.Service))
		if err != nil {
			return nil, err
		}
		return &Telemetry{Metrics: metrics}, nil
	}

	res, err := id.resource()
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	t := &Telemetry{}
	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	t.shutdown = append(t.shutdown, tp.Shutdown)

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	t.shutdown = append(t.shutdown, mp.Shutdown)

	if t.Metrics, err = NewPipelineMetrics(otel.Meter(id.Service)); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}

	logger.Info("telemetry exporting", logger.Fields(
		"service", id.Service,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
		"metric_interval", cfg.MetricInterval.String(),
	))
	return t, nil
}
