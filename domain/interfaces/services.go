package interfaces

import (
	"context"
	"time"

	"pension720/events"
)

// SourceDocument is the raw body of the page the draws are extracted from
type SourceDocument struct {
	URL       string
	Body      string
	FetchedAt time.Time
}

// PageFetcher retrieves the source document
type PageFetcher interface {
	Fetch(ctx context.Context) (*SourceDocument, error)
}

// EventPublisher publishes pipeline events
type EventPublisher interface {
	Publish(event events.Event) error
}

// PipelineMetrics records pipeline measurements
type PipelineMetrics interface {
	RecordRecordsExtracted(count int, bonusAttached int)
	RecordHistorySize(rounds int)
	RecordTicketsGenerated(count int)
	RecordStageDuration(stage string, duration time.Duration)
	RecordRunResult(result string)
}
