package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeHistoryUpdated           EventType = "history_updated"
	EventTypeRecommendationsGenerated EventType = "recommendations_generated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// HistoryUpdatedEvent is emitted once the merged history and its frequency
// table have both been persisted
type HistoryUpdatedEvent struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	FreshCount  int       `json:"fresh_count"`
	TotalRounds int       `json:"total_rounds"`
	MinRound    int       `json:"min_round"`
	MaxRound    int       `json:"max_round"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e HistoryUpdatedEvent) Type() EventType {
	return EventTypeHistoryUpdated
}

// RecommendationsGeneratedEvent carries the ticket numbers handed to the report
type RecommendationsGeneratedEvent struct {
	RunID      string    `json:"run_id"`
	Cycle      int64     `json:"cycle"`
	MaxRound   int       `json:"max_round"`
	Tickets    []string  `json:"tickets"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e RecommendationsGeneratedEvent) Type() EventType {
	return EventTypeRecommendationsGenerated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching.
// Handlers run synchronously so a short lived process never exits with
// deliveries still in flight.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit delivers an event to every registered handler in subscription order.
// A panicking handler is logged and does not stop the remaining ones.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		b.call(ctx, handler, i, event)
	}
}

func (b *Bus) call(ctx context.Context, h Handler, handlerIndex int, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"eventType":    event.Type(),
				"handlerIndex": handlerIndex,
				"panic":        r,
			}).Error("Event handler panicked")
		}
	}()
	h(ctx, event)
}

// Publish lets the bus stand in for any event publisher
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}
