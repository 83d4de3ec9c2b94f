package events

import (
	"context"
	"sync"
)

// EventHandler consumes one published event.
type EventHandler func(context.Context, Event) error

// Dispatcher routes domain events to their subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher delivers events synchronously within the publishing
// process.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher builds an empty dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish invokes every subscriber of the event's type in registration
// order. A failing subscriber never blocks the remaining ones.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, subscriber := range subscribers {
		_ = subscriber(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for one event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
