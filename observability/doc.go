// Package observability wires OpenTelemetry tracing and metrics for the
// gateway and reports service health.
//
//	p, err := observability.Setup(ctx, cfg.Observability, cfg.Name, version.GetVersion(), cfg.Environment)
//	defer p.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanBackendCall)
//	defer span.End()
//	p.Metrics.RecordBackendCall(ctx, "transformer", "single", "ok", elapsed)
//
// Tracing and metric export are both off unless enabled in configuration;
// spans and instruments then go to the global no-op providers.
package observability
