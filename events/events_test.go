package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversToSubscribersInOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var received []string

	bus.Subscribe(EventTypeHistoryUpdated, func(ctx context.Context, event Event) {
		e, ok := event.(HistoryUpdatedEvent)
		if assert.True(t, ok, "expected HistoryUpdatedEvent, got %T", event) {
			received = append(received, "first:"+e.RunID)
		}
	})
	bus.Subscribe(EventTypeHistoryUpdated, func(ctx context.Context, event Event) {
		received = append(received, "second")
	})
	bus.Subscribe(EventTypeRecommendationsGenerated, func(ctx context.Context, event Event) {
		t.Errorf("unexpected delivery of %s", event.Type())
	})

	err := bus.Publish(HistoryUpdatedEvent{RunID: "run-1", TotalRounds: 3})

	assert.NoError(t, err)
	assert.Equal(t, []string{"first:run-1", "second"}, received)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	delivered := 0

	bus.Subscribe(EventTypeRecommendationsGenerated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeRecommendationsGenerated, func(ctx context.Context, event Event) {
		delivered++
	})

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), RecommendationsGeneratedEvent{RunID: "run-2", Tickets: []string{"4:639566"}})
	})
	assert.Equal(t, 1, delivered)
}

func TestBus_NoSubscribers(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewBus().Publish(HistoryUpdatedEvent{}))
}
