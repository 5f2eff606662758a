package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher. Handlers run asynchronously.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers. A nil bus drops it.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	switch e := ev.(type) {
	case RenderQueuedEvent:
		event.Publish(b.dispatcher, e)
	case RenderStartedEvent:
		event.Publish(b.dispatcher, e)
	case RenderProgressEvent:
		event.Publish(b.dispatcher, e)
	case RenderFinishedEvent:
		event.Publish(b.dispatcher, e)
	case RenderFailedEvent:
		event.Publish(b.dispatcher, e)
	case SettingsReloadedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type it accepts and returns an
// unsubscribe function. Unknown handler types get a no-op.
//
//	unsub := bus.Subscribe(func(e RenderFinishedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(RenderQueuedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RenderStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RenderProgressEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RenderFinishedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RenderFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SettingsReloadedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// Close stops the dispatcher.
func (b *Bus) Close() error {
	return b.dispatcher.Close()
}
