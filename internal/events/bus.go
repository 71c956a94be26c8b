package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers. A nil bus drops the event.
// Usage: bus.Publish(NotificationStartedEvent{...})
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}

	// kelindar/event is generic over the concrete type
	switch e := ev.(type) {
	case NotificationStartedEvent:
		event.Publish(b.dispatcher, e)
	case NotificationStoppedEvent:
		event.Publish(b.dispatcher, e)
	case NotificationTimedOutEvent:
		event.Publish(b.dispatcher, e)
	case BlinkToggledEvent:
		event.Publish(b.dispatcher, e)
	case WakelockChangedEvent:
		event.Publish(b.dispatcher, e)
	case DisplayStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case BacklightRegisteredEvent:
		event.Publish(b.dispatcher, e)
	case AttributeWrittenEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e BlinkToggledEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	if b == nil {
		return func() {}
	}
	switch h := handler.(type) {
	case func(NotificationStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(NotificationStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(NotificationTimedOutEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BlinkToggledEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(WakelockChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DisplayStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BacklightRegisteredEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(AttributeWrittenEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Unknown handler types get a no-op unsubscribe
		return func() {}
	}
}
