// Package engine defines the narrow surface the runtime uses to talk to
// a scene host. The runtime only adds, starts, removes, pauses and
// resumes scenes; everything else (rendering, input decoding, timing) is
// the host's business. The Bubble Tea implementation lives in
// internal/platform/tui.
package engine

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/akshara-arcade/akshara/internal/assets"
	"github.com/akshara-arcade/akshara/internal/bus"
	"github.com/akshara-arcade/akshara/internal/state"
)

// Bus events emitted by engine implementations.
const (
	EventResize       = "engine:resize"
	EventSceneStarted = "engine:scene_started"
	EventPaused       = "engine:paused"
	EventResumed      = "engine:resumed"
)

// Env gives scenes access to the runtime without direct references to
// the composition root.
type Env struct {
	Dispatch func(state.Action) error
	Assets   *assets.Library
	Bus      *bus.Bus
	Logger   *log.Logger
}

// Scene is a self-contained screen hosted by the engine.
type Scene interface {
	// Key returns a unique identifier for this scene (e.g. "alphabet").
	Key() string

	// Title returns a human-readable name for display.
	Title() string

	// Init loads the scene's content once, before first use. The scene
	// loader calls it; a failed Init leaves the scene unloaded.
	Init(ctx context.Context, env *Env) error

	// Reset prepares the scene each time it becomes active.
	Reset(vp state.Viewport)

	// HandleKey processes one decoded key press while the scene is
	// active.
	HandleKey(key string)

	// View renders the scene into a string for the given dimensions.
	View(width, height int) string
}

// Engine hosts scenes. Implementations must tolerate StartScene for a
// key added moments earlier from a state-change listener.
type Engine interface {
	AddScene(s Scene)
	StartScene(key string) error
	RemoveScene(key string)
	Pause()
	Resume()
	Paused() bool
}
