// Package manager provides the top-level runtime orchestrator. A
// Manager owns the engine handle, the state store and the service
// container, wires resize and error propagation, and translates state
// changes into engine scene transitions. There is no hidden global
// instance: the composition root constructs exactly one Manager and
// passes it to whoever needs it.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/akshara-arcade/akshara/internal/bus"
	"github.com/akshara-arcade/akshara/internal/engine"
	"github.com/akshara-arcade/akshara/internal/registry"
	"github.com/akshara-arcade/akshara/internal/scenes"
	"github.com/akshara-arcade/akshara/internal/state"
)

// Bus events emitted by the manager.
const (
	EventInitialized = "manager:initialized"
	EventDestroyed   = "manager:destroyed"
	EventError       = "runtime:error"
	EventGamePaused  = "game:paused"
	EventGameResumed = "game:resumed"
)

// ViewportService is the registry name the manager probes before wiring
// resize propagation.
const ViewportService = "viewport"

// ErrNoStore reports initialization without an attached state store.
var ErrNoStore = errors.New("manager: no state store attached")

// Config holds manager options, merged over defaults at Initialize.
type Config struct {
	Debug  bool
	Locale string
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{Debug: false, Locale: "en"}
}

// Manager is the runtime orchestrator.
type Manager struct {
	mu          sync.Mutex
	bus         *bus.Bus
	eng         engine.Engine
	store       *state.Store
	services    *registry.Registry
	scenes      *scenes.Loader
	cfg         Config
	initialized bool
	unsubscribe func()
	errSub      bus.Subscription
	activeScene string
	logger      *log.Logger
}

// New creates a manager around the given event bus. The engine, store
// and scene loader are attached separately by the composition root.
func New(b *bus.Bus, services *registry.Registry, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	if services == nil {
		services = registry.New(logger)
	}
	return &Manager{
		bus:      b,
		services: services,
		cfg:      DefaultConfig(),
		logger:   logger.WithPrefix("manager"),
	}
}

// AttachStore hands the manager its state store. Must happen before
// Initialize.
func (m *Manager) AttachStore(s *state.Store) {
	m.mu.Lock()
	m.store = s
	m.mu.Unlock()
}

// AttachEngine hands the manager its engine handle.
func (m *Manager) AttachEngine(e engine.Engine) {
	m.mu.Lock()
	m.eng = e
	m.mu.Unlock()
}

// AttachScenes hands the manager the scene loader used for lazy scene
// transitions.
func (m *Manager) AttachScenes(l *scenes.Loader) {
	m.mu.Lock()
	m.scenes = l
	m.mu.Unlock()
}

// Initialize wires the runtime together. It is idempotent: a second call
// while initialized warns and does nothing. Any failing step aborts the
// whole initialization, propagates to the caller and leaves no wiring
// behind, so a fixed-up assembly can retry.
func (m *Manager) Initialize(ctx context.Context, cfg Config) error {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		m.logger.Warn("already initialized")
		return nil
	}
	merged := DefaultConfig()
	merged.Debug = cfg.Debug
	if cfg.Locale != "" {
		merged.Locale = cfg.Locale
	}
	m.cfg = merged
	store := m.store
	m.mu.Unlock()

	// The store requirement is checked before any side effect: a failed
	// call must not have run service hooks or installed bus handlers.
	if store == nil {
		return ErrNoStore
	}

	if err := m.services.InitializeAll(ctx); err != nil {
		return fmt.Errorf("manager: service initialization: %w", err)
	}

	// Every stray failure in the process funnels through HandleError.
	errSub := m.bus.Subscribe(EventError, func(args ...any) {
		if len(args) == 0 {
			return
		}
		if err, ok := args[0].(error); ok {
			m.handleError(err)
		}
	})

	unsubscribe, err := store.Subscribe(m.onStateChange)
	if err != nil {
		m.bus.Unsubscribe(errSub)
		return fmt.Errorf("manager: subscribing to store: %w", err)
	}

	if m.services.Has(ViewportService) {
		m.bus.Subscribe(engine.EventResize, func(args ...any) {
			if len(args) != 2 {
				return
			}
			w, wok := args[0].(int)
			h, hok := args[1].(int)
			if !wok || !hok {
				return
			}
			//nolint:errcheck // resize is advisory
			store.Dispatch(state.Action{
				Type:    state.ActionSetViewport,
				Payload: state.Viewport{Width: w, Height: h},
			})
		})
	}

	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.errSub = errSub
	m.initialized = true
	m.mu.Unlock()

	m.bus.Emit(EventInitialized)
	return nil
}

// Initialized reports whether Initialize has completed.
func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// Config returns the merged configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// RegisterService stores a service in the manager's container.
func (m *Manager) RegisterService(name string, svc any) {
	m.services.Register(name, svc)
}

// Service resolves a service by name, warning and returning nil for an
// unknown name.
func (m *Manager) Service(name string) (any, error) {
	return m.services.Get(name)
}

// Dispatch forwards an action to the attached store. Without a store it
// warns and does nothing.
func (m *Manager) Dispatch(action state.Action) error {
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		m.logger.Warn("dispatch without store", "type", action.Type)
		return nil
	}
	return store.Dispatch(action)
}

// Pause suspends the engine. Pausing while already paused is a no-op.
func (m *Manager) Pause() {
	m.mu.Lock()
	eng := m.eng
	m.mu.Unlock()
	if eng == nil || eng.Paused() {
		return
	}
	eng.Pause()
	//nolint:errcheck // pause state is also tracked by the engine
	m.Dispatch(state.Action{Type: state.ActionGamePause})
	m.bus.Emit(EventGamePaused)
}

// Resume continues a paused engine. Resuming while running is a no-op.
func (m *Manager) Resume() {
	m.mu.Lock()
	eng := m.eng
	m.mu.Unlock()
	if eng == nil || !eng.Paused() {
		return
	}
	eng.Resume()
	//nolint:errcheck // pause state is also tracked by the engine
	m.Dispatch(state.Action{Type: state.ActionGameResume})
	m.bus.Emit(EventGameResumed)
}

// On registers a bus handler through the manager.
func (m *Manager) On(event string, fn bus.Handler) bus.Subscription {
	return m.bus.Subscribe(event, fn)
}

// Off removes a handler registered through On.
func (m *Manager) Off(sub bus.Subscription) {
	m.bus.Unsubscribe(sub)
}

// Emit publishes an event on the manager's bus, reporting whether any
// handler existed.
func (m *Manager) Emit(event string, args ...any) bool {
	return m.bus.Emit(event, args...)
}

// HandleError is the single sink for runtime failures: it logs, records
// the error in app state, and never panics.
func (m *Manager) HandleError(err error) {
	if err == nil {
		return
	}
	m.handleError(err)
}

func (m *Manager) handleError(err error) {
	m.logger.Error("runtime error", "err", err)
	//nolint:errcheck // the error is already logged
	m.Dispatch(state.Action{Type: state.ActionSetError, Payload: err.Error()})
}

// Recover converts a panic on the calling goroutine into a handled
// runtime error. Use as `defer m.Recover()`.
func (m *Manager) Recover() {
	if r := recover(); r != nil {
		m.handleError(fmt.Errorf("manager: recovered panic: %v", r))
	}
}

// onStateChange reacts to committed state: when the current scene key
// changes, the new scene is lazily loaded and started on the engine.
func (m *Manager) onStateChange(next *state.AppState) {
	m.mu.Lock()
	eng := m.eng
	loader := m.scenes
	current := m.activeScene
	m.mu.Unlock()

	target := next.Game.CurrentScene
	if target == "" || target == current || eng == nil || loader == nil {
		return
	}

	scene, err := loader.Load(context.Background(), target)
	if err != nil {
		m.handleError(err)
		return
	}
	eng.AddScene(scene)
	if err := eng.StartScene(target); err != nil {
		m.handleError(err)
		return
	}

	m.mu.Lock()
	m.activeScene = target
	m.mu.Unlock()
	m.bus.Emit(engine.EventSceneStarted, target)
}

// Destroy tears the runtime down: every service's Destroy hook runs
// (failures logged, never fatal), the store subscription and the error
// funnel are removed, internal collections are cleared and the
// destroyed event fires.
func (m *Manager) Destroy(ctx context.Context) {
	if err := m.services.DestroyAll(ctx); err != nil {
		m.logger.Error("service teardown reported failures", "err", err)
	}

	m.mu.Lock()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	errSub := m.errSub
	m.errSub = bus.Subscription{}
	m.initialized = false
	m.activeScene = ""
	m.mu.Unlock()

	m.bus.Unsubscribe(errSub)

	m.bus.Emit(EventDestroyed)
}
