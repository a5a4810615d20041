package infrastructure

import (
	"fmt"

	"pension720/events"
)

const (
	subjectHistoryUpdated           = "pension720.history.updated"
	subjectRecommendationsGenerated = "pension720.recommendations.generated"
)

// EventSubjectMapper maps pipeline events to NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts an event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeHistoryUpdated:
		return subjectHistoryUpdated
	case events.EventTypeRecommendationsGenerated:
		return subjectRecommendationsGenerated
	default:
		return fmt.Sprintf("pension720.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case subjectHistoryUpdated:
		return events.EventTypeHistoryUpdated
	case subjectRecommendationsGenerated:
		return events.EventTypeRecommendationsGenerated
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		subjectHistoryUpdated,
		subjectRecommendationsGenerated,
	}
}
