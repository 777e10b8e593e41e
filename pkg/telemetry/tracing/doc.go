// Package tracing wraps OpenTelemetry for CostKatana.
//
// Completions, tracking, the optimizer pass and report generation run in
// spans carrying the provider, model, token counts and cost. Spans are
// exported over OTLP gRPC and sampled by one of three strategies:
//   - always: every trace
//   - never: no trace
//   - ratio: a fraction of traces chosen by trace ID
//
// Outgoing HTTP requests carry W3C trace context through Inject, so a
// completion span links to the provider and backend calls it makes.
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanCompletion,
//	    tracing.ProviderAttributes("openai", "gpt-4o-mini")...)
//	resp, err := provider.SendCompletion(ctx, req)
//	tracing.End(span, err)
//
// A disabled configuration returns a tracer whose spans are noops.
package tracing
