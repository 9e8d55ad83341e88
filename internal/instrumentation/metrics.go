package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// timedCounter pairs a call counter with a duration histogram sharing the
// same attributes.
type timedCounter struct {
	key      string
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

func newTimedCounter(meter metric.Meter, totalName, durationName, subject, unit, key string) (timedCounter, error) {
	total, err := meter.Int64Counter(
		totalName,
		metric.WithDescription("Total number of "+subject),
		metric.WithUnit(unit),
	)
	if err != nil {
		return timedCounter{}, fmt.Errorf("failed to create %s counter: %w", totalName, err)
	}

	duration, err := meter.Float64Histogram(
		durationName,
		metric.WithDescription("Duration of "+subject+" in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return timedCounter{}, fmt.Errorf("failed to create %s histogram: %w", durationName, err)
	}

	return timedCounter{key: key, total: total, duration: duration}, nil
}

func (c timedCounter) record(ctx context.Context, label, status string, d time.Duration) {
	if c.total == nil || c.duration == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(c.key, label),
		attribute.String("status", status),
	)
	c.total.Add(ctx, 1, attrs)
	c.duration.Record(ctx, d.Seconds(), attrs)
}

// Metrics records calendar and tool metrics. The zero value is a no-op recorder.
//
// Calendar API calls produce calendar_api_operations_total and
// calendar_api_operation_duration_seconds, labelled by operation and status.
// Tool calls produce mcp_tool_invocations_total and
// mcp_tool_invocation_duration_seconds, labelled by tool and status.
type Metrics struct {
	calendar timedCounter
	tools    timedCounter
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	calendar, err := newTimedCounter(meter,
		"calendar_api_operations_total", "calendar_api_operation_duration_seconds",
		"Google Calendar API operations", "{operation}", "operation")
	if err != nil {
		return nil, err
	}
	tools, err := newTimedCounter(meter,
		"mcp_tool_invocations_total", "mcp_tool_invocation_duration_seconds",
		"MCP tool invocations", "{invocation}", "tool")
	if err != nil {
		return nil, err
	}
	return &Metrics{calendar: calendar, tools: tools}, nil
}

// RecordCalendarOperation records one Calendar API call. operation is one of
// list, get, insert, update or delete; status is "success" or "error".
func (m *Metrics) RecordCalendarOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.calendar.record(ctx, operation, status, duration)
}

// RecordToolInvocation records one MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.tools.record(ctx, toolName, status, duration)
}
