package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// HistoryLimit bounds the undo/redo history. When a dispatch would push
// the history past the limit, the oldest entry is evicted.
const HistoryLimit = 50

// Contract violations reported by Store methods.
var (
	ErrInvalidAction = errors.New("state: action type must be a non-empty string")
	ErrNilListener   = errors.New("state: listener must not be nil")
	ErrNilMiddleware = errors.New("state: middleware must not be nil")
)

// Listener observes committed state changes. Listeners are invoked
// synchronously after a transition commits, in subscription order.
type Listener func(next *AppState)

// Dispatch is one stage of the dispatch pipeline.
type Dispatch func(Action)

// Middleware wraps the dispatch pipeline. A middleware receives the next
// stage and returns its replacement; it may observe or act around the
// action but must call next to let the dispatch proceed.
type Middleware func(next Dispatch) Dispatch

type historyEntry struct {
	Action    Action
	Snapshot  *AppState
	Timestamp time.Time
}

type listenerEntry struct {
	id int
	fn Listener
}

// Store holds the application state tree and coordinates all updates.
type Store struct {
	mu         sync.Mutex
	state      *AppState
	reducer    Reducer
	middleware []Middleware
	pipeline   Dispatch
	listeners  []listenerEntry
	nextSub    int
	history    []historyEntry
	cursor     int
	logger     *log.Logger
}

// New creates a store seeded with the given state tree. A nil initial
// state starts from Initial(); a nil reducer uses the built-in Reduce.
func New(initial *AppState, reducer Reducer, logger *log.Logger) *Store {
	if initial == nil {
		initial = Initial()
	}
	if reducer == nil {
		reducer = Reduce
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{
		state:   initial,
		reducer: reducer,
		logger:  logger.WithPrefix("state"),
	}
	s.history = []historyEntry{{
		Action:    Action{Type: "@@INIT"},
		Snapshot:  initial.Clone(),
		Timestamp: time.Now(),
	}}
	s.pipeline = s.apply
	return s
}

// GetState returns the current state tree. The tree is shared and must
// not be mutated by the caller.
func (s *Store) GetState() *AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Use appends a middleware stage to the pipeline. Stages observe actions
// in registration order: the first middleware registered is the first to
// see each dispatched action.
func (s *Store) Use(mw Middleware) error {
	if mw == nil {
		return ErrNilMiddleware
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.middleware = append(s.middleware, mw)
	pipeline := Dispatch(s.apply)
	for i := len(s.middleware) - 1; i >= 0; i-- {
		pipeline = s.middleware[i](pipeline)
	}
	s.pipeline = pipeline
	return nil
}

// Dispatch runs an action through the middleware pipeline and the
// reducer. An action without a type is rejected before any middleware or
// reducer runs. If the reducer returns the previous state unchanged, no
// listener fires and no history entry is recorded.
func (s *Store) Dispatch(action Action) error {
	if action.Type == "" {
		return fmt.Errorf("%w (payload %T)", ErrInvalidAction, action.Payload)
	}
	s.mu.Lock()
	pipeline := s.pipeline
	s.mu.Unlock()

	pipeline(action)
	return nil
}

// apply is the terminal pipeline stage: reduce, commit, record, notify.
func (s *Store) apply(action Action) {
	s.mu.Lock()
	next := s.reducer(s.state, action)
	if next == s.state {
		s.mu.Unlock()
		return
	}
	s.state = next

	// A dispatch after undo discards the abandoned future before the new
	// entry is appended. At capacity the oldest entry is evicted and the
	// cursor shifts with it.
	s.history = s.history[:s.cursor+1]
	s.history = append(s.history, historyEntry{
		Action:    action,
		Snapshot:  next.Clone(),
		Timestamp: time.Now(),
	})
	s.cursor++
	if len(s.history) > HistoryLimit {
		s.history = append(s.history[:0], s.history[1:]...)
		s.cursor--
	}

	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, next)
}

// Subscribe registers a state-change listener and returns a function
// that removes exactly that listener.
func (s *Store) Subscribe(fn Listener) (func(), error) {
	if fn == nil {
		return nil, ErrNilListener
	}
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}, nil
}

// Undo moves the history cursor back one step and restores that
// snapshot, reporting whether movement occurred.
func (s *Store) Undo() bool {
	s.mu.Lock()
	if s.cursor == 0 {
		s.mu.Unlock()
		return false
	}
	s.cursor--
	s.state = s.history[s.cursor].Snapshot.Clone()
	next := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, next)
	return true
}

// Redo moves the history cursor forward one step and restores that
// snapshot, reporting whether movement occurred.
func (s *Store) Redo() bool {
	s.mu.Lock()
	if s.cursor >= len(s.history)-1 {
		s.mu.Unlock()
		return false
	}
	s.cursor++
	s.state = s.history[s.cursor].Snapshot.Clone()
	next := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, next)
	return true
}

// Reset replaces the state tree, clears all history and notifies
// subscribers. A nil state resets to Initial().
func (s *Store) Reset(newState *AppState) {
	if newState == nil {
		newState = Initial()
	}
	s.mu.Lock()
	s.state = newState
	s.history = []historyEntry{{
		Action:    Action{Type: "@@RESET"},
		Snapshot:  newState.Clone(),
		Timestamp: time.Now(),
	}}
	s.cursor = 0
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, newState)
}

// HistoryLen reports the number of recorded history entries, including
// the baseline snapshot.
func (s *Store) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// CanUndo reports whether Undo would move the cursor.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.history)-1
}

func (s *Store) snapshotListeners() []listenerEntry {
	out := make([]listenerEntry, len(s.listeners))
	copy(out, s.listeners)
	return out
}

// notify invokes listeners outside the store lock so a listener may
// dispatch, subscribe or unsubscribe without deadlocking. A panicking
// listener is logged and does not stop the remaining listeners.
func (s *Store) notify(listeners []listenerEntry, next *AppState) {
	for _, e := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("listener panicked", "panic", r)
				}
			}()
			e.fn(next)
		}()
	}
}
