// Package tui implements the engine over Bubble Tea: it hosts scenes,
// routes key presses to the active scene, emits resize events onto the
// bus and renders the active scene with the runtime's UI chrome.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/akshara-arcade/akshara/internal/bus"
	"github.com/akshara-arcade/akshara/internal/engine"
	"github.com/akshara-arcade/akshara/internal/state"
)

// Platform is the Bubble Tea engine implementation.
type Platform struct {
	mu      sync.Mutex
	scenes  map[string]engine.Scene
	current engine.Scene
	paused  bool
	width   int
	height  int
	bus     *bus.Bus
	store   *state.Store
	logger  *log.Logger
}

// NewPlatform creates an engine with the given initial dimensions.
func NewPlatform(b *bus.Bus, store *state.Store, width, height int, logger *log.Logger) *Platform {
	if logger == nil {
		logger = log.Default()
	}
	return &Platform{
		scenes: make(map[string]engine.Scene),
		width:  width,
		height: height,
		bus:    b,
		store:  store,
		logger: logger.WithPrefix("tui"),
	}
}

// AddScene implements engine.Engine. Adding a scene under an existing
// key replaces it.
func (p *Platform) AddScene(s engine.Scene) {
	p.mu.Lock()
	p.scenes[s.Key()] = s
	p.mu.Unlock()
}

// StartScene implements engine.Engine: the named scene becomes active
// and is reset with the current viewport.
func (p *Platform) StartScene(key string) error {
	p.mu.Lock()
	scene, ok := p.scenes[key]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("tui: scene %q not added", key)
	}
	p.current = scene
	vp := state.Viewport{Width: p.width, Height: p.height}
	p.mu.Unlock()

	scene.Reset(vp)
	return nil
}

// RemoveScene implements engine.Engine. Removing the active scene leaves
// the platform with no current scene.
func (p *Platform) RemoveScene(key string) {
	p.mu.Lock()
	if p.current != nil && p.current.Key() == key {
		p.current = nil
	}
	delete(p.scenes, key)
	p.mu.Unlock()
}

// Pause implements engine.Engine.
func (p *Platform) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
	p.bus.Emit(engine.EventPaused)
}

// Resume implements engine.Engine.
func (p *Platform) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.bus.Emit(engine.EventResumed)
}

// Paused implements engine.Engine.
func (p *Platform) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// CurrentScene returns the active scene, or nil.
func (p *Platform) CurrentScene() engine.Scene {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Resize records the new dimensions and emits the resize event.
func (p *Platform) Resize(width, height int) {
	p.mu.Lock()
	p.width = width
	p.height = height
	p.mu.Unlock()
	p.bus.Emit(engine.EventResize, width, height)
}

// Size returns the current dimensions.
func (p *Platform) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Destroy implements the registry teardown hook: all scenes are dropped.
func (p *Platform) Destroy(ctx context.Context) error {
	p.mu.Lock()
	p.scenes = make(map[string]engine.Scene)
	p.current = nil
	p.mu.Unlock()
	return nil
}
