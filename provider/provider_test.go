package provider_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/observability"
	"github.com/kbukum/longscribe/provider"
)

type echoProvider struct {
	name   string
	closed bool
}

func (e *echoProvider) Name() string                       { return e.name }
func (e *echoProvider) IsAvailable(_ context.Context) bool { return true }
func (e *echoProvider) Execute(_ context.Context, in string) (string, error) {
	return "echo:" + in, nil
}
func (e *echoProvider) Close(_ context.Context) error {
	e.closed = true
	return nil
}

type failingProvider struct{}

func (p *failingProvider) Name() string                       { return "fail" }
func (p *failingProvider) IsAvailable(_ context.Context) bool { return true }
func (p *failingProvider) Execute(_ context.Context, _ string) (string, error) {
	return "", errors.New("intentional failure")
}

func TestChain_Empty(t *testing.T) {
	wrapped := provider.Chain[string, string]()(&echoProvider{name: "test"})
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(tag string) provider.Middleware[string, string] {
		return func(inner provider.RequestResponse[string, string]) provider.RequestResponse[string, string] {
			return provider.Func(inner.Name(), func(ctx context.Context, in string) (string, error) {
				order = append(order, tag+":before")
				out, err := inner.Execute(ctx, in)
				order = append(order, tag+":after")
				return out, err
			})
		}
	}

	wrapped := provider.Chain(mw("A"), mw("B"))(&echoProvider{name: "test"})
	if _, err := wrapped.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	want := []string{"A:before", "B:before", "B:after", "A:after"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)

	wrapped := provider.WithLogging[string, string](log)(&echoProvider{name: "log-test"})
	if out, err := wrapped.Execute(context.Background(), "hello"); err != nil || out != "echo:hello" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}
	if wrapped.Name() != "log-test" || !wrapped.IsAvailable(context.Background()) {
		t.Error("expected name and availability to delegate")
	}
	if !strings.Contains(buf.String(), "provider call ok") {
		t.Errorf("expected debug line, got %q", buf.String())
	}

	buf.Reset()
	failing := provider.WithLogging[string, string](log)(&failingProvider{})
	if _, err := failing.Execute(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "intentional failure") {
		t.Errorf("expected error logged, got %q", buf.String())
	}
}

func TestWithTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	wrapped := provider.WithTracing[string, string]("longscribe")(&echoProvider{name: "trace-test"})
	if out, err := wrapped.Execute(context.Background(), "hello"); err != nil || out != "echo:hello" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}

	failing := provider.WithTracing[string, string]("longscribe")(&failingProvider{})
	if _, err := failing.Execute(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "longscribe.trace-test" || spans[1].Name() != "longscribe.fail" {
		t.Errorf("unexpected span names %q %q", spans[0].Name(), spans[1].Name())
	}
	if len(spans[1].Events()) == 0 {
		t.Error("expected the failure recorded on the span")
	}
}

func TestWithMetrics(t *testing.T) {
	metrics, err := observability.NewPipelineMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	wrapped := provider.WithMetrics[string, string](metrics)(&echoProvider{name: "metrics-test"})
	if out, err := wrapped.Execute(context.Background(), "hello"); err != nil || out != "echo:hello" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}
}

func TestCloseIfCloseable(t *testing.T) {
	p := &echoProvider{name: "c"}
	if err := provider.CloseIfCloseable(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if !p.closed {
		t.Error("expected Close to be called")
	}
	if err := provider.CloseIfCloseable(context.Background(), &failingProvider{}); err != nil {
		t.Errorf("non-closeable must be a no-op, got %v", err)
	}
}
