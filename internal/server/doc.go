// Package server holds the state shared by the MCP tools and the optional
// HTTP endpoint serving Prometheus metrics and health probes.
//
// ServerContext owns the event repository and the instrumentation provider
// for the lifetime of the serve command. MetricsServer exposes /metrics
// through promhttp next to the /healthz and /readyz probes of HealthChecker.
package server
