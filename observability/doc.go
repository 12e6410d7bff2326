// Package observability provides OpenTelemetry tracing and metrics for the
// pipeline.
//
// Setup installs OTLP/HTTP exporters when an endpoint is configured and
// returns the pipeline instruments:
//
//	tel, err := observability.Setup(ctx, cfg.Telemetry, observability.Identity{Service: "longscribe"})
//	defer tel.Shutdown(ctx)
//
//	ctx, stage := observability.StartStage(ctx, observability.SpanSegment)
//	defer stage.End(err)
//	tel.Metrics.RecordSegment(ctx, "completed", stage.Duration())
//
// When no endpoint is configured the global no-op providers stay in place
// and every helper here stays safe to call.
package observability
