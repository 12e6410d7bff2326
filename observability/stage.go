package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage tracks one timed step of a run: a span plus its wall time.
type Stage struct {
	Name      string
	StartTime time.Time
	span      trace.Span
}

// StartStage starts a span named spanName and returns the derived context.
func StartStage(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, *Stage) {
	ctx, span := StartSpan(ctx, spanName, trace.WithAttributes(attrs...))
	return ctx, &Stage{Name: spanName, StartTime: time.Now(), span: span}
}

// End records the outcome on the span, ends it and returns the elapsed time.
func (s *Stage) End(err error) time.Duration {
	duration := time.Since(s.StartTime)
	status := "ok"
	if err != nil {
		status = "error"
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	s.span.End()
	return duration
}

// Duration returns the elapsed time since the stage started.
func (s *Stage) Duration() time.Duration {
	return time.Since(s.StartTime)
}
