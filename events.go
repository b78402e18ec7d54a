package cachemanager

import (
	"sync"
	"time"

	"cache-manager/model"
)

// dispatcher fans cache events out to registered handlers. Emission is
// asynchronous: one goroutine per event, handlers for that event invoked
// sequentially within it. Handlers must not assume ordering across events.
type dispatcher struct {
	mu       sync.RWMutex
	handlers map[model.EventType][]model.Handler
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		handlers: make(map[model.EventType][]model.Handler),
	}
}

// on registers a handler for an event type. Handlers cannot be removed;
// observers live as long as the manager.
func (d *dispatcher) on(event model.EventType, h model.Handler) {
	if h == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], h)
}

// emit delivers the event to every handler registered for its type. The
// handler slice is copied under the read lock so a concurrent on cannot
// race the delivery goroutine.
func (d *dispatcher) emit(event model.Event) {
	d.mu.RLock()
	registered := d.handlers[event.Type]
	handlers := make([]model.Handler, len(registered))
	copy(handlers, registered)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	go func() {
		for _, h := range handlers {
			h(event)
		}
	}()
}
