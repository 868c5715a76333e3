package state

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
)

// Storage keys used by the persistence middleware.
const (
	PreferencesKey = "user.preferences"
	ProgressKey    = "user.progress"
)

// Saver is the durable key→string storage consumed by the persistence
// middleware. Set may fail (disk full, closed database); failures are
// logged and swallowed, never surfaced to the dispatcher.
type Saver interface {
	Set(key, value string) error
}

// Tracker receives gameplay events from the tracking middleware.
type Tracker interface {
	Track(event string, props map[string]any)
}

// LoggingMiddleware logs every action with the state before and after the
// rest of the pipeline runs. It never alters control flow.
func LoggingMiddleware(store *Store, logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("dispatch")
	return func(next Dispatch) Dispatch {
		return func(action Action) {
			before := store.GetState()
			next(action)
			after := store.GetState()
			logger.Debug("action",
				"type", action.Type,
				"payload", action.Payload,
				"changed", before != after,
				"scene", after.Game.CurrentScene,
			)
		}
	}
}

// PersistenceMiddleware lets the action proceed, then serializes the
// user's preferences and progress into durable storage. Storage failures
// are logged and ignored so a full disk never breaks a dispatch.
func PersistenceMiddleware(store *Store, saver Saver, logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("persist")
	return func(next Dispatch) Dispatch {
		return func(action Action) {
			next(action)

			st := store.GetState()
			if err := saveJSON(saver, PreferencesKey, st.User.Preferences); err != nil {
				logger.Warn("could not persist preferences", "err", err)
			}
			if err := saveJSON(saver, ProgressKey, st.User.Progress); err != nil {
				logger.Warn("could not persist progress", "err", err)
			}
		}
	}
}

func saveJSON(saver Saver, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return saver.Set(key, string(data))
}

// trackedActions is the allow-list of action types forwarded to the
// analytics collaborator.
var trackedActions = map[string]bool{
	ActionGameStart:      true,
	ActionGameEnd:        true,
	ActionChangeScene:    true,
	ActionUpdateProgress: true,
}

const trackingQueueSize = 64

// Tracking forwards allow-listed actions to an analytics collaborator
// through a buffered queue drained by one goroutine, so a slow tracker
// never blocks a dispatch and events reach the tracker in dispatch
// order. Close at teardown; a late dispatch after Close drops the event
// instead of racing the torn-down collaborator.
type Tracking struct {
	mu      sync.Mutex
	tracker Tracker
	queue   chan Action
	done    chan struct{}
	closed  bool
}

// NewTracking creates the tracking stage and starts its drain goroutine.
// A nil tracker disables forwarding entirely.
func NewTracking(tracker Tracker) *Tracking {
	t := &Tracking{tracker: tracker}
	if tracker == nil {
		return t
	}
	t.queue = make(chan Action, trackingQueueSize)
	t.done = make(chan struct{})
	go t.drain()
	return t
}

func (t *Tracking) drain() {
	for action := range t.queue {
		t.tracker.Track(action.Type, map[string]any{
			"payload": action.Payload,
		})
	}
	close(t.done)
}

// Middleware returns the pipeline stage. Allow-listed actions are
// enqueued after the rest of the pipeline runs; a full queue drops the
// event rather than blocking the dispatch.
func (t *Tracking) Middleware() Middleware {
	return func(next Dispatch) Dispatch {
		return func(action Action) {
			next(action)

			if t.tracker == nil || !trackedActions[action.Type] {
				return
			}
			t.mu.Lock()
			if !t.closed {
				select {
				case t.queue <- action:
				default:
				}
			}
			t.mu.Unlock()
		}
	}
}

// Close stops accepting events and waits for the drain goroutine to
// deliver everything already queued. Safe to call more than once.
func (t *Tracking) Close() {
	if t.tracker == nil {
		return
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	<-t.done
}
