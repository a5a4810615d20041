package observability

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"pension720/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the pipeline
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	recordsExtractedCounter metric.Int64Counter
	bonusAttachedCounter    metric.Int64Counter
	historyRoundsGauge      metric.Int64Gauge
	ticketsCounter          metric.Int64Counter
	stageDurationHist       metric.Float64Histogram
	runsCounter             metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Println("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Println("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Println("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.Printf("Using OTLP metric exporter: %s", mp.config.OTelOTLPEndpoint)

	case "none":
		log.Println("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	// a run is short, so the final export happens on Shutdown
	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)

	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("pension720")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Println("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.recordsExtractedCounter, err = mp.meter.Int64Counter(
		RecordsExtractedTotal,
		metric.WithDescription("Total number of draw records extracted from the source page"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create records extracted counter: %w", err)
	}

	mp.bonusAttachedCounter, err = mp.meter.Int64Counter(
		BonusAttachedTotal,
		metric.WithDescription("Total number of extracted records with an associated bonus result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create bonus attached counter: %w", err)
	}

	mp.historyRoundsGauge, err = mp.meter.Int64Gauge(
		HistoryRounds,
		metric.WithDescription("Number of rounds in the persisted history"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create history rounds gauge: %w", err)
	}

	mp.ticketsCounter, err = mp.meter.Int64Counter(
		TicketsGeneratedTotal,
		metric.WithDescription("Total number of recommendation tickets generated"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create tickets counter: %w", err)
	}

	mp.stageDurationHist, err = mp.meter.Float64Histogram(
		StageDuration,
		metric.WithDescription("Duration of pipeline stages in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create stage duration histogram: %w", err)
	}

	mp.runsCounter, err = mp.meter.Int64Counter(
		RunsTotal,
		metric.WithDescription("Total number of pipeline runs by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create runs counter: %w", err)
	}

	return nil
}

// Shutdown flushes pending measurements and shuts down the provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordRecordsExtracted records one extraction pass
func (mp *MetricsProvider) RecordRecordsExtracted(count int, bonusAttached int) {
	if !mp.isEnabled() {
		return
	}

	mp.recordsExtractedCounter.Add(context.Background(), int64(count))
	mp.bonusAttachedCounter.Add(context.Background(), int64(bonusAttached))
}

// RecordHistorySize records the size of the merged history
func (mp *MetricsProvider) RecordHistorySize(rounds int) {
	if !mp.isEnabled() {
		return
	}

	mp.historyRoundsGauge.Record(context.Background(), int64(rounds))
}

// RecordTicketsGenerated records the number of tickets handed to the report
func (mp *MetricsProvider) RecordTicketsGenerated(count int) {
	if !mp.isEnabled() {
		return
	}

	mp.ticketsCounter.Add(context.Background(), int64(count))
}

// RecordStageDuration records how long a pipeline stage took
func (mp *MetricsProvider) RecordStageDuration(stage string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	mp.stageDurationHist.Record(context.Background(), duration.Seconds(),
		metric.WithAttributes(
			attribute.String(LabelStage, stage),
		),
	)
}

// RecordRunResult records the outcome of a run
func (mp *MetricsProvider) RecordRunResult(result string) {
	if !mp.isEnabled() {
		return
	}

	mp.runsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelResult, result),
		),
	)
}

// isEnabled checks if metrics are enabled and instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
