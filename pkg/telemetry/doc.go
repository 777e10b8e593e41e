// Package telemetry groups the observability packages used by CostKatana.
//
//   - logging: structured slog logging with secret redaction
//   - metrics: Prometheus collectors for tracking, pricing and providers
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: concurrent component checks
//
// Each is configured from the telemetry section of the configuration file:
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    endpoint: localhost:4317
//	    insecure: true
package telemetry
