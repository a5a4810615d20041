package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pension720/application"
	"pension720/config"
	"pension720/database"
	"pension720/domain/interfaces"
	"pension720/domain/services"
	"pension720/events"
	"pension720/infrastructure"
	"pension720/infrastructure/observability"
	"pension720/repository"

	log "github.com/sirupsen/logrus"
)

// Run wires the pipeline from cfg, executes one pass and writes the report to out
func Run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := setupLogging(cfg); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageBackend,
		"skipFetch":   cfg.SkipFetch,
	}).Info("Starting pension720 run")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to flush metrics")
		}
	}()

	history, frequency, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	bus := events.NewBus()
	closeNATS := subscribeEventHandlers(ctx, cfg, bus)
	defer closeNATS()

	metrics := observability.GetMetrics()
	if metrics == nil {
		metrics = observability.NewMetricsProvider(cfg)
	}

	fetcher := infrastructure.NewHTTPFetcher(cfg.SourceURL,
		infrastructure.WithTimeout(cfg.FetchTimeout),
		infrastructure.WithMaxRetries(cfg.FetchMaxRetries),
		infrastructure.WithUserAgent(cfg.UserAgent),
	)

	pipeline := application.NewPipeline(
		fetcher,
		services.NewDrawExtractor(cfg.MaxBonusGap),
		history,
		frequency,
		services.NewTicketGenerator(),
		bus,
		metrics,
	)

	result, runErr := pipeline.Run(ctx, application.RunOptions{
		SkipFetch:   cfg.SkipFetch,
		TicketCount: cfg.TicketCount,
		Cycle:       cfg.Cycle,
		Seed:        cfg.Seed,
	})
	if result != nil && result.Table != nil {
		if err := application.RenderReport(out, cfg.OutputFormat, result); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	log.WithFields(log.Fields{
		"runId":   result.RunID,
		"rounds":  len(result.History),
		"tickets": len(result.Tickets),
	}).Info("Run complete")
	return nil
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT; logs go to stderr so the
// report on stdout stays clean
func setupLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// openStores returns the history and frequency stores for the configured backend
func openStores(ctx context.Context, cfg *config.Config) (interfaces.DrawHistoryRepository, interfaces.FrequencyRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")
		return repository.NewDrawRecordRepository(db), repository.NewFrequencySnapshotRepository(db), db.Close, nil

	default:
		log.WithFields(log.Fields{
			"history":   cfg.HistoryPath,
			"frequency": cfg.FrequencyPath,
		}).Info("Using file storage")
		return infrastructure.NewFileHistoryStore(cfg.HistoryPath), infrastructure.NewFileFrequencyStore(cfg.FrequencyPath), func() {}, nil
	}
}

// subscribeEventHandlers registers the logging handlers and, when NATS is
// configured, forwards every event to it. The returned func closes the connection.
func subscribeEventHandlers(ctx context.Context, cfg *config.Config, bus *events.Bus) func() {
	bus.Subscribe(events.EventTypeHistoryUpdated, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.HistoryUpdatedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"runId":       e.RunID,
			"fresh":       e.FreshCount,
			"totalRounds": e.TotalRounds,
			"maxRound":    e.MaxRound,
		}).Info("History updated")
	})
	bus.Subscribe(events.EventTypeRecommendationsGenerated, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.RecommendationsGeneratedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"runId":   e.RunID,
			"cycle":   e.Cycle,
			"tickets": len(e.Tickets),
		}).Info("Recommendations generated")
	})

	publisher, closeFn := newEventPublisher(ctx, cfg)
	forward := func(ctx context.Context, event events.Event) {
		if err := publisher.Publish(event); err != nil {
			log.WithError(err).WithField("eventType", event.Type()).Warn("Failed to forward event")
		}
	}
	bus.Subscribe(events.EventTypeHistoryUpdated, forward)
	bus.Subscribe(events.EventTypeRecommendationsGenerated, forward)
	return closeFn
}

// newEventPublisher connects to NATS when servers are configured. A broker
// that cannot be reached never fails the run.
func newEventPublisher(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, func()) {
	if cfg.NATSServers == "" {
		return infrastructure.NewNoopEventPublisher(), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(connectCtx); err != nil {
		log.WithError(err).Warn("NATS unavailable, events will not be forwarded")
		return infrastructure.NewNoopEventPublisher(), func() {}
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureEventStream(client, mapper); err != nil {
		log.WithError(err).Warn("Failed to ensure event stream")
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close NATS connection")
		}
	}
	return infrastructure.NewNATSEventPublisher(client, mapper), closeFn
}
