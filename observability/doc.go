// Package observability wires OpenTelemetry tracing and metrics for API
// wrappers: OTLP HTTP exporters, span helpers and the request metrics an
// executor records.
//
//	shutdown, err := observability.Setup(ctx, observability.Config{Enabled: true})
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("my-wrapper"))
//	metrics.RecordRequestEnd(ctx, "user", "GET", 200, duration)
package observability
