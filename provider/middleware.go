package provider

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/observability"
)

// Middleware transforms a RequestResponse provider by wrapping it.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares. The first is outermost: Chain(a, b)(p) is
// a(b(p)).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// around keeps Name and IsAvailable of inner and replaces Execute.
type around[I, O any] struct {
	RequestResponse[I, O]
	exec func(ctx context.Context, input I) (O, error)
}

func (a *around[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return a.exec(ctx, input)
}

func wrap[I, O any](inner RequestResponse[I, O], exec func(ctx context.Context, input I) (O, error)) RequestResponse[I, O] {
	return &around[I, O]{RequestResponse: inner, exec: exec}
}

// WithLogging logs every call with the provider name and duration: failures
// at error level, successes at debug.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return wrap(inner, func(ctx context.Context, input I) (O, error) {
			start := time.Now()
			out, err := inner.Execute(ctx, input)

			fields := logger.DurationFields("execute", time.Since(start))
			fields[logger.FieldProvider] = inner.Name()
			l := log.WithContext(ctx)
			if err != nil {
				fields[logger.FieldError] = err.Error()
				l.Error("provider call failed", fields)
			} else {
				l.Debug("provider call ok", fields)
			}
			return out, err
		})
	}
}

// WithTracing opens a span "{serviceName}.{provider}" around every call.
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return wrap(inner, func(ctx context.Context, input I) (out O, err error) {
			ctx, stage := observability.StartStage(ctx, serviceName+"."+inner.Name(),
				attribute.String(observability.AttrServiceName, serviceName),
				attribute.String(observability.AttrProvider, inner.Name()))
			defer func() { stage.End(err) }()
			return inner.Execute(ctx, input)
		})
	}
}

// WithMetrics records the latency and status of every call as a generation.
func WithMetrics[I, O any](metrics *observability.PipelineMetrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return wrap(inner, func(ctx context.Context, input I) (O, error) {
			start := time.Now()
			out, err := inner.Execute(ctx, input)
			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordGeneration(ctx, inner.Name(), status, time.Since(start))
			return out, err
		})
	}
}
