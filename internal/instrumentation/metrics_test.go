package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestMetrics_RecordCalendarOperation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordCalendarOperation(ctx, OperationList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordCalendarOperation(ctx, OperationInsert, StatusError, 500*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "event_get", StatusSuccess, 10*time.Millisecond)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["calendar_api_operations_total"])
	assert.Equal(t, int64(1), sums["mcp_tool_invocations_total"])
}

func TestMetrics_ZeroValueIsNoop(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()

	// Should not panic
	metrics.RecordCalendarOperation(ctx, OperationGet, StatusSuccess, time.Millisecond)
	metrics.RecordToolInvocation(ctx, "event_get", StatusSuccess, time.Millisecond)

	empty := &Metrics{}
	empty.RecordCalendarOperation(ctx, OperationGet, StatusSuccess, time.Millisecond)
	empty.RecordToolInvocation(ctx, "event_get", StatusSuccess, time.Millisecond)
}
