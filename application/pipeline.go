package application

import (
	"context"
	"fmt"
	"time"

	"pension720/domain/entities"
	"pension720/domain/interfaces"
	"pension720/domain/services"
	"pension720/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Stage names reported to metrics
const (
	StageFetch     = "fetch"
	StageExtract   = "extract"
	StagePersist   = "persist"
	StageAggregate = "aggregate"
	StageGenerate  = "generate"
)

// Run results reported to metrics
const (
	ResultSuccess          = "success"
	ResultFetchFailed      = "fetch_failed"
	ResultExtractFailed    = "extract_failed"
	ResultPersistFailed    = "persist_failed"
	ResultGenerationFailed = "generation_failed"
)

// RunOptions is the per-invocation configuration surface
type RunOptions struct {
	// SkipFetch re-aggregates the persisted history without touching the source page
	SkipFetch bool

	// TicketCount is the number of recommendations; 0 skips generation
	TicketCount int

	Cycle int64
	Seed  string
}

// RunResult is everything a report needs about one run
type RunResult struct {
	RunID      string
	Source     string
	Fresh      []entities.DrawRecord
	Extraction services.ExtractionStats
	History    []entities.DrawRecord
	Table      *entities.FrequencyTable
	Tickets    []entities.Ticket
	Cycle      int64
}

// Latest returns the highest round of the history, or nil when there is none
func (r *RunResult) Latest() *entities.DrawRecord {
	if r == nil || len(r.History) == 0 {
		return nil
	}
	return &r.History[len(r.History)-1]
}

// TicketGenerator produces recommendations from a frequency table
type TicketGenerator interface {
	Generate(table *entities.FrequencyTable, n int, cycle int64, seed string) ([]entities.Ticket, error)
}

// Pipeline runs fetch, extraction, merge, aggregation and generation in order
type Pipeline struct {
	fetcher   interfaces.PageFetcher
	extractor *services.DrawExtractor
	history   interfaces.DrawHistoryRepository
	frequency interfaces.FrequencyRepository
	generator TicketGenerator
	publisher interfaces.EventPublisher
	metrics   interfaces.PipelineMetrics
	now       func() time.Time
}

// NewPipeline creates a new pipeline
func NewPipeline(
	fetcher interfaces.PageFetcher,
	extractor *services.DrawExtractor,
	history interfaces.DrawHistoryRepository,
	frequency interfaces.FrequencyRepository,
	generator TicketGenerator,
	publisher interfaces.EventPublisher,
	metrics interfaces.PipelineMetrics,
) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		history:   history,
		frequency: frequency,
		generator: generator,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Run executes one pipeline pass.
// Fetch and extraction failures abort before anything is written. A generation
// failure is returned only after the history and frequency table are stored.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	result := &RunResult{
		RunID: uuid.NewString(),
		Cycle: opts.Cycle,
	}
	logger := log.WithField("run_id", result.RunID)

	logger.WithFields(log.Fields{
		"skip_fetch":   opts.SkipFetch,
		"ticket_count": opts.TicketCount,
		"cycle":        opts.Cycle,
	}).Info("Starting pipeline run")

	if !opts.SkipFetch {
		if err := p.fetchAndExtract(ctx, logger, result); err != nil {
			return result, err
		}
	}

	persisted := p.loadHistory(ctx, logger)
	result.History = services.MergeHistory(persisted, result.Fresh)

	stageStart := p.now()
	if !opts.SkipFetch {
		if err := p.history.Save(ctx, result.History); err != nil {
			p.metrics.RecordRunResult(ResultPersistFailed)
			return result, fmt.Errorf("failed to save draw history: %w", err)
		}
	}
	p.metrics.RecordHistorySize(len(result.History))

	aggStart := p.now()
	result.Table = services.BuildFrequencyTable(result.History, p.now())
	p.metrics.RecordStageDuration(StageAggregate, p.now().Sub(aggStart))

	if err := p.frequency.Save(ctx, result.Table); err != nil {
		p.metrics.RecordRunResult(ResultPersistFailed)
		return result, fmt.Errorf("failed to save frequency table: %w", err)
	}
	p.metrics.RecordStageDuration(StagePersist, p.now().Sub(stageStart))

	logger.WithFields(log.Fields{
		"fresh":        len(result.Fresh),
		"total_rounds": result.Table.TotalRounds,
		"min_round":    result.Table.MinRound,
		"max_round":    result.Table.MaxRound,
	}).Info("History and frequency table stored")

	p.publish(logger, events.HistoryUpdatedEvent{
		RunID:       result.RunID,
		Source:      result.Source,
		FreshCount:  len(result.Fresh),
		TotalRounds: result.Table.TotalRounds,
		MinRound:    result.Table.MinRound,
		MaxRound:    result.Table.MaxRound,
		OccurredAt:  p.now().UTC(),
	})

	if opts.TicketCount == 0 {
		logger.Info("Ticket count is zero, skipping generation")
		p.metrics.RecordRunResult(ResultSuccess)
		return result, nil
	}

	genStart := p.now()
	tickets, err := p.generator.Generate(result.Table, opts.TicketCount, opts.Cycle, opts.Seed)
	if err != nil {
		p.metrics.RecordRunResult(ResultGenerationFailed)
		return result, fmt.Errorf("failed to generate recommendations: %w", err)
	}
	p.metrics.RecordStageDuration(StageGenerate, p.now().Sub(genStart))
	p.metrics.RecordTicketsGenerated(len(tickets))
	result.Tickets = tickets

	keys := make([]string, 0, len(tickets))
	for _, t := range tickets {
		keys = append(keys, t.Key())
	}
	p.publish(logger, events.RecommendationsGeneratedEvent{
		RunID:      result.RunID,
		Cycle:      opts.Cycle,
		MaxRound:   result.Table.MaxRound,
		Tickets:    keys,
		OccurredAt: p.now().UTC(),
	})

	p.metrics.RecordRunResult(ResultSuccess)
	logger.WithField("tickets", len(tickets)).Info("Pipeline run complete")
	return result, nil
}

func (p *Pipeline) fetchAndExtract(ctx context.Context, logger *log.Entry, result *RunResult) error {
	start := p.now()
	doc, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.metrics.RecordRunResult(ResultFetchFailed)
		return fmt.Errorf("failed to fetch source page: %w", err)
	}
	p.metrics.RecordStageDuration(StageFetch, p.now().Sub(start))
	result.Source = doc.URL

	start = p.now()
	text := services.NormalizeText(doc.Body)
	fresh, stats, err := p.extractor.Extract(text, doc.URL)
	result.Extraction = stats
	if err != nil {
		p.metrics.RecordRunResult(ResultExtractFailed)
		logger.WithFields(log.Fields{
			"source":     doc.URL,
			"body_bytes": len(doc.Body),
			"text_bytes": len(text),
		}).Error("No draw records could be extracted")
		return fmt.Errorf("failed to extract draws: %w", err)
	}
	p.metrics.RecordStageDuration(StageExtract, p.now().Sub(start))
	p.metrics.RecordRecordsExtracted(len(fresh), stats.BonusAttached)

	result.Fresh = fresh
	return nil
}

// loadHistory never fails: an unreadable history starts the run from empty
func (p *Pipeline) loadHistory(ctx context.Context, logger *log.Entry) []entities.DrawRecord {
	records, err := p.history.Load(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to load draw history, starting from empty history")
		return nil
	}
	return records
}

func (p *Pipeline) publish(logger *log.Entry, event events.Event) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(event); err != nil {
		logger.WithError(err).WithField("eventType", event.Type()).Warn("Failed to publish event")
	}
}
