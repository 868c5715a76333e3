// Package bus provides a named-event publish/subscribe channel.
// Components communicate laterally through the bus instead of holding
// direct references to each other. Handlers run synchronously, in
// subscription order, on the goroutine that emits.
package bus

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Handler receives the arguments passed to Emit.
type Handler func(args ...any)

// Subscription identifies a registered handler so it can be removed later.
type Subscription struct {
	event string
	id    int
}

type handlerEntry struct {
	id int
	fn Handler
}

// Bus is a synchronous publish/subscribe event channel.
// The zero value is not usable; construct with New.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]handlerEntry
	nextID   int
	debug    bool
	logger   *log.Logger
}

// New creates an empty event bus.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{
		handlers: make(map[string][]handlerEntry),
		logger:   logger.WithPrefix("bus"),
	}
}

// SetDebug toggles emission/subscription logging. Debug mode never alters
// handler order or return values.
func (b *Bus) SetDebug(enabled bool) {
	b.mu.Lock()
	b.debug = enabled
	b.mu.Unlock()
}

// Subscribe registers a handler for the named event and returns a
// subscription token for later removal. A nil handler is ignored and
// returns a token that removes nothing.
func (b *Bus) Subscribe(event string, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.debug {
		b.logger.Debug("subscribe", "event", event)
	}
	if fn == nil {
		return Subscription{event: event, id: -1}
	}

	b.nextID++
	b.handlers[event] = append(b.handlers[event], handlerEntry{id: b.nextID, fn: fn})
	return Subscription{event: event, id: b.nextID}
}

// Unsubscribe removes exactly the handler identified by the subscription.
// Removing an already-removed handler is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[sub.event]
	for i, e := range entries {
		if e.id == sub.id {
			b.handlers[sub.event] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(b.handlers[sub.event]) == 0 {
		delete(b.handlers, sub.event)
	}
}

// RemoveAll drops every handler for one event without affecting other events.
func (b *Bus) RemoveAll(event string) {
	b.mu.Lock()
	delete(b.handlers, event)
	b.mu.Unlock()
}

// Emit synchronously invokes all handlers registered for the event, in
// subscription order, and reports whether any handler existed. Emitting an
// event nobody listens to is a no-op.
//
// The handler list is snapshotted before invocation, so a handler may
// subscribe or unsubscribe during emission without corrupting the list;
// such changes take effect for the next Emit.
func (b *Bus) Emit(event string, args ...any) bool {
	b.mu.RLock()
	entries := b.handlers[event]
	snapshot := make([]handlerEntry, len(entries))
	copy(snapshot, entries)
	debug := b.debug
	b.mu.RUnlock()

	if debug {
		b.logger.Debug("emit", "event", event, "args", args)
	}
	if len(snapshot) == 0 {
		return false
	}
	for _, e := range snapshot {
		e.fn(args...)
	}
	return true
}

// HandlerCount returns the number of handlers registered for an event.
func (b *Bus) HandlerCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[event])
}
