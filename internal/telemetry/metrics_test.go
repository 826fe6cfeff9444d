package telemetry_test

import (
	"context"
	"testing"

	"github.com/dkeye/Relay/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_RecordsThroughSDK(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := telemetry.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.Joins.Add(ctx, 2)
	m.Relayed.Add(ctx, 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	got := map[string]int64{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				got[md.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), got["relay.joins"])
	assert.Equal(t, int64(1), got["relay.messages.relayed"])
}

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNop(t *testing.T) {
	m := telemetry.Nop()
	require.NotNil(t, m)
	m.Leaves.Add(context.Background(), 1)
}
