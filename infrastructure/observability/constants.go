package observability

// Metric name prefixes
const (
	MetricPrefix = "pension720"
)

// Metric names
const (
	// Extraction metrics
	RecordsExtractedTotal = MetricPrefix + ".extract.records_total"
	BonusAttachedTotal    = MetricPrefix + ".extract.bonus_attached_total"

	// History metrics
	HistoryRounds = MetricPrefix + ".history.rounds"

	// Recommendation metrics
	TicketsGeneratedTotal = MetricPrefix + ".tickets.generated_total"

	// Pipeline metrics
	StageDuration = MetricPrefix + ".pipeline.stage_duration"
	RunsTotal     = MetricPrefix + ".pipeline.runs_total"
)

// Label keys
const (
	LabelStage  = "stage"
	LabelResult = "result"
)
