// Package instrumentation wires OpenTelemetry metrics and traces for gcalevents.
//
// A Provider owns the meter and tracer providers for one process. With the
// prometheus exporter it also owns a private Prometheus registry, exposed
// through Gatherer, so several providers can coexist in tests without
// clashing on the global registry.
//
// The calendar gateway records every remote call under
// calendar_api_operations_total and calendar_api_operation_duration_seconds
// and wraps it in a client span named google.calendar.<operation>. MCP tool
// handlers use mcp_tool_invocations_total, mcp_tool_invocation_duration_seconds
// and server spans named tool.<name>.
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG and
// OTEL_SERVICE_NAME from the environment.
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
package instrumentation
