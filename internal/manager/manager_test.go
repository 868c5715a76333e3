package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/akshara-arcade/akshara/internal/bus"
	"github.com/akshara-arcade/akshara/internal/engine"
	"github.com/akshara-arcade/akshara/internal/scenes"
	"github.com/akshara-arcade/akshara/internal/state"
)

type fakeEngine struct {
	added   []string
	started []string
	paused  bool
}

func (f *fakeEngine) AddScene(s engine.Scene) { f.added = append(f.added, s.Key()) }
func (f *fakeEngine) StartScene(key string) error {
	f.started = append(f.started, key)
	return nil
}
func (f *fakeEngine) RemoveScene(key string) {}

func (f *fakeEngine) Pause()       { f.paused = true }
func (f *fakeEngine) Resume()      { f.paused = false }
func (f *fakeEngine) Paused() bool { return f.paused }

type fakeScene struct {
	key string
}

func (s *fakeScene) Key() string   { return s.key }
func (s *fakeScene) Title() string { return s.key }

func (s *fakeScene) Init(ctx context.Context, env *engine.Env) error { return nil }

func (s *fakeScene) Reset(vp state.Viewport)       {}
func (s *fakeScene) HandleKey(key string)          {}
func (s *fakeScene) View(width, height int) string { return s.key }

func newTestManager(t *testing.T) (*Manager, *bus.Bus, *state.Store) {
	t.Helper()
	b := bus.New(nil)
	store := state.New(nil, nil, nil)
	m := New(b, nil, nil)
	m.AttachStore(store)
	return m, b, store
}

func TestInitializeWithoutStore(t *testing.T) {
	m := New(bus.New(nil), nil, nil)

	err := m.Initialize(context.Background(), DefaultConfig())
	if !errors.Is(err, ErrNoStore) {
		t.Fatalf("Initialize() error = %v, want ErrNoStore", err)
	}
	if m.Initialized() {
		t.Error("Initialized() = true after a failed Initialize")
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	m, b, _ := newTestManager(t)

	initEvents := 0
	b.Subscribe(EventInitialized, func(args ...any) { initEvents++ })

	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Second Initialize() failed: %v", err)
	}

	if !m.Initialized() {
		t.Error("Initialized() = false after Initialize")
	}
	if initEvents != 1 {
		t.Errorf("Initialized event fired %d times, want 1", initEvents)
	}
}

type initCountingService struct {
	initCalls int
}

func (s *initCountingService) Initialize(ctx context.Context) error {
	s.initCalls++
	return nil
}

func TestFailedInitializeLeavesNoWiring(t *testing.T) {
	b := bus.New(nil)
	m := New(b, nil, nil)

	svc := &initCountingService{}
	m.RegisterService("svc", svc)

	if err := m.Initialize(context.Background(), DefaultConfig()); !errors.Is(err, ErrNoStore) {
		t.Fatalf("Initialize() error = %v, want ErrNoStore", err)
	}
	if svc.initCalls != 0 {
		t.Errorf("Service hooks ran %d times for a failed initialization", svc.initCalls)
	}

	// The error funnel was not installed either
	store := state.New(nil, nil, nil)
	m.AttachStore(store)
	b.Emit(EventError, errors.New("early failure"))
	if got := store.GetState().App.LastError; got != "" {
		t.Errorf("LastError = %q before a successful Initialize", got)
	}

	// A retry wires everything exactly once
	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Retry Initialize() failed: %v", err)
	}
	if svc.initCalls != 1 {
		t.Errorf("Service hooks ran %d times after the retry, want 1", svc.initCalls)
	}
	b.Emit(EventError, errors.New("late failure"))
	if got := store.GetState().App.LastError; got != "late failure" {
		t.Errorf("LastError = %q after the retry", got)
	}
}

func TestDestroyRemovesErrorFunnel(t *testing.T) {
	m, b, store := newTestManager(t)

	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	m.Destroy(context.Background())

	b.Emit(EventError, errors.New("after teardown"))
	if got := store.GetState().App.LastError; got != "" {
		t.Errorf("LastError = %q, error funnel survived Destroy", got)
	}
}

func TestConfigMergesOverDefaults(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.Initialize(context.Background(), Config{Debug: true})

	cfg := m.Config()
	if !cfg.Debug {
		t.Error("Debug = false, want override")
	}
	if cfg.Locale != "en" {
		t.Errorf("Locale = %q, want default %q", cfg.Locale, "en")
	}
}

func TestDispatchWithoutStoreIsNoop(t *testing.T) {
	m := New(bus.New(nil), nil, nil)

	if err := m.Dispatch(state.Action{Type: state.ActionGameStart}); err != nil {
		t.Errorf("Dispatch() without store error = %v, want nil", err)
	}
}

func TestDispatchForwardsToStore(t *testing.T) {
	m, _, store := newTestManager(t)

	if err := m.Dispatch(state.Action{Type: state.ActionGameStart}); err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}
	if !store.GetState().Game.IsGameActive {
		t.Error("Dispatched action did not reach the store")
	}
}

func TestPauseResumeGuards(t *testing.T) {
	m, b, store := newTestManager(t)
	eng := &fakeEngine{}
	m.AttachEngine(eng)

	pauseEvents, resumeEvents := 0, 0
	b.Subscribe(EventGamePaused, func(args ...any) { pauseEvents++ })
	b.Subscribe(EventGameResumed, func(args ...any) { resumeEvents++ })

	// Resuming while running is a no-op
	m.Resume()
	if resumeEvents != 0 {
		t.Error("Resume fired while not paused")
	}

	m.Pause()
	m.Pause()
	if pauseEvents != 1 {
		t.Errorf("Pause event fired %d times for a double pause, want 1", pauseEvents)
	}
	if !eng.paused || !store.GetState().Game.IsPaused {
		t.Error("Pause did not propagate to engine and state")
	}

	m.Resume()
	m.Resume()
	if resumeEvents != 1 {
		t.Errorf("Resume event fired %d times for a double resume, want 1", resumeEvents)
	}
	if eng.paused || store.GetState().Game.IsPaused {
		t.Error("Resume did not propagate to engine and state")
	}
}

func TestOnEmitOff(t *testing.T) {
	m, _, _ := newTestManager(t)

	calls := 0
	sub := m.On("custom:event", func(args ...any) { calls++ })

	if !m.Emit("custom:event") {
		t.Error("Emit() = false with a handler registered")
	}
	m.Off(sub)
	if m.Emit("custom:event") {
		t.Error("Emit() = true after Off")
	}
	if calls != 1 {
		t.Errorf("Handler ran %d times, want 1", calls)
	}
}

func TestHandleErrorRecordsInState(t *testing.T) {
	m, _, store := newTestManager(t)

	m.HandleError(errors.New("something broke"))
	if got := store.GetState().App.LastError; got != "something broke" {
		t.Errorf("LastError = %q", got)
	}

	// nil errors are ignored
	before := store.GetState()
	m.HandleError(nil)
	if store.GetState() != before {
		t.Error("HandleError(nil) changed state")
	}
}

func TestErrorEventFunnelsToHandler(t *testing.T) {
	m, b, store := newTestManager(t)
	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	b.Emit(EventError, errors.New("bus-delivered failure"))
	if got := store.GetState().App.LastError; got != "bus-delivered failure" {
		t.Errorf("LastError = %q", got)
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	m, _, store := newTestManager(t)

	func() {
		defer m.Recover()
		panic("scene exploded")
	}()

	if got := store.GetState().App.LastError; got == "" {
		t.Error("Recovered panic was not recorded in state")
	}
}

func TestResizePropagatesWithViewportService(t *testing.T) {
	m, b, store := newTestManager(t)
	m.RegisterService(ViewportService, struct{}{})

	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	b.Emit(engine.EventResize, 100, 30)

	vp := store.GetState().App.Viewport
	if vp.Width != 100 || vp.Height != 30 {
		t.Errorf("Viewport = %+v, want 100x30", vp)
	}
}

func TestResizeIgnoredWithoutViewportService(t *testing.T) {
	m, b, store := newTestManager(t)

	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	b.Emit(engine.EventResize, 100, 30)

	if vp := store.GetState().App.Viewport; vp.Width == 100 {
		t.Error("Resize propagated without a viewport service")
	}
}

func TestSceneChangeStartsScene(t *testing.T) {
	scenes.Register("manager-test-scene", func() engine.Scene {
		return &fakeScene{key: "manager-test-scene"}
	})

	m, b, _ := newTestManager(t)
	eng := &fakeEngine{}
	m.AttachEngine(eng)
	m.AttachScenes(scenes.NewLoader(&engine.Env{Dispatch: m.Dispatch}, nil))

	var startedEvents []string
	b.Subscribe(engine.EventSceneStarted, func(args ...any) {
		if len(args) == 1 {
			if key, ok := args[0].(string); ok {
				startedEvents = append(startedEvents, key)
			}
		}
	})

	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	err := m.Dispatch(state.Action{
		Type:    state.ActionChangeScene,
		Payload: state.SceneChange{Scene: "manager-test-scene"},
	})
	if err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}

	if len(eng.started) != 1 || eng.started[0] != "manager-test-scene" {
		t.Errorf("Engine started %v, want [manager-test-scene]", eng.started)
	}
	if len(startedEvents) != 1 || startedEvents[0] != "manager-test-scene" {
		t.Errorf("Scene-started events %v, want [manager-test-scene]", startedEvents)
	}

	// Re-dispatching the same scene must not restart it
	m.Dispatch(state.Action{
		Type:    state.ActionChangeScene,
		Payload: state.SceneChange{Scene: "manager-test-scene"},
	})
	if len(eng.started) != 1 {
		t.Errorf("Engine started %v after a redundant change", eng.started)
	}
}

func TestSceneChangeToUnknownSceneIsHandled(t *testing.T) {
	m, _, store := newTestManager(t)
	eng := &fakeEngine{}
	m.AttachEngine(eng)
	m.AttachScenes(scenes.NewLoader(&engine.Env{Dispatch: m.Dispatch}, nil))

	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	m.Dispatch(state.Action{
		Type:    state.ActionChangeScene,
		Payload: state.SceneChange{Scene: "does-not-exist"},
	})

	if len(eng.started) != 0 {
		t.Errorf("Engine started %v for an unknown scene", eng.started)
	}
	if store.GetState().App.LastError == "" {
		t.Error("Failed scene load was not recorded as a runtime error")
	}
}

func TestDestroy(t *testing.T) {
	m, b, store := newTestManager(t)

	destroyed := 0
	b.Subscribe(EventDestroyed, func(args ...any) { destroyed++ })

	if err := m.Initialize(context.Background(), DefaultConfig()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	m.Destroy(context.Background())

	if m.Initialized() {
		t.Error("Initialized() = true after Destroy")
	}
	if destroyed != 1 {
		t.Errorf("Destroyed event fired %d times, want 1", destroyed)
	}

	// The store subscription is gone: state changes no longer reach the
	// manager's scene wiring.
	store.Dispatch(state.Action{
		Type:    state.ActionChangeScene,
		Payload: state.SceneChange{Scene: "anything"},
	})
}
