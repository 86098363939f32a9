// Package eventbus carries campaign lifecycle events between the campaigner
// processes.
package eventbus

import (
	"context"
	"fmt"

	"github.com/dukex/campaigner/pkg/events"
)

// Event is anything published on the bus. Its type selects the handler on the
// receiving side.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes events. key groups the events of one campaign so
// brokers that partition keep them ordered.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber dispatches received events to one handler per event type.
// Handlers must be registered before Subscribe is called.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives the decoded event, a value of the concrete type
// registered for the event type in package events.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}

// HandleAll registers handler for every given event type.
func HandleAll(subscriber EventSubscriber, handler EventHandler, eventTypes ...events.EventType) error {
	for _, eventType := range eventTypes {
		if err := subscriber.Handle(eventType, handler); err != nil {
			return fmt.Errorf("failed to handle %s: %w", eventType, err)
		}
	}

	return nil
}
