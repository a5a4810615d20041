package observability

import (
	"context"
	"testing"
	"time"

	"pension720/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetricsProvider_Disabled(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name     string
		enabled  bool
		exporter string
	}{
		{"otel disabled", false, "console"},
		{"exporter none", true, "none"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewTestConfig()
			cfg.OTelEnabled = tc.enabled
			cfg.OTelExporterType = tc.exporter

			mp := NewMetricsProvider(cfg)
			require.NoError(t, mp.Initialize(context.Background()))
			assert.False(t, mp.isEnabled())

			// recording on a disabled provider is a no-op
			assert.NotPanics(t, func() {
				mp.RecordRecordsExtracted(3, 1)
				mp.RecordHistorySize(10)
				mp.RecordTicketsGenerated(5)
				mp.RecordStageDuration("fetch", time.Second)
				mp.RecordRunResult("success")
			})
			assert.NoError(t, mp.Shutdown(context.Background()))
		})
	}
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	assert.ErrorContains(t, err, "unknown exporter type")
}

func TestMetricsProvider_Records(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	mp := NewMetricsProvider(cfg)
	mp.meter = provider.Meter("test")
	require.NoError(t, mp.createInstruments())
	mp.initialized = true

	mp.RecordRecordsExtracted(12, 4)
	mp.RecordRecordsExtracted(3, 0)
	mp.RecordHistorySize(303)
	mp.RecordTicketsGenerated(5)
	mp.RecordStageDuration("extract", 250*time.Millisecond)
	mp.RecordRunResult("success")
	mp.RecordRunResult("success")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := make(map[string]metricdata.Metrics)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	sumOf := func(name string) int64 {
		sum, ok := byName[name].Data.(metricdata.Sum[int64])
		require.True(t, ok, name)
		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		return total
	}

	assert.Equal(t, int64(15), sumOf(RecordsExtractedTotal))
	assert.Equal(t, int64(4), sumOf(BonusAttachedTotal))
	assert.Equal(t, int64(5), sumOf(TicketsGeneratedTotal))
	assert.Equal(t, int64(2), sumOf(RunsTotal))

	gauge, ok := byName[HistoryRounds].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(303), gauge.DataPoints[0].Value)

	hist, ok := byName[StageDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	stage, ok := hist.DataPoints[0].Attributes.Value(attribute.Key(LabelStage))
	require.True(t, ok)
	assert.Equal(t, "extract", stage.AsString())
}
