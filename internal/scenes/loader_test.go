package scenes

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/akshara-arcade/akshara/internal/engine"
)

func TestLoaderInitializesOnce(t *testing.T) {
	var inits int32
	// Init counts across instances through a shared counter
	Register("loader-counted", func() engine.Scene {
		return &countedScene{counter: &inits}
	})

	l := NewLoader(&engine.Env{}, nil)

	first, err := l.Load(context.Background(), "loader-counted")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	second, err := l.Load(context.Background(), "loader-counted")
	if err != nil {
		t.Fatalf("Second Load() failed: %v", err)
	}

	if first != second {
		t.Error("Load() returned different scene instances")
	}
	if inits != 1 {
		t.Errorf("Init ran %d times, want 1", inits)
	}
	if !l.IsLoaded("loader-counted") {
		t.Error("IsLoaded() = false after Load")
	}
}

type countedScene struct {
	stubScene
	counter *int32
}

func (c *countedScene) Key() string   { return "loader-counted" }
func (c *countedScene) Title() string { return "Counted" }
func (c *countedScene) Init(ctx context.Context, env *engine.Env) error {
	atomic.AddInt32(c.counter, 1)
	return nil
}

func TestLoaderUnknownScene(t *testing.T) {
	l := NewLoader(&engine.Env{}, nil)

	if _, err := l.Load(context.Background(), "not-registered"); err == nil {
		t.Fatal("Load() = nil error for an unregistered scene")
	}
	if l.IsLoaded("not-registered") {
		t.Error("Unregistered scene marked loaded")
	}
}

func TestLoaderInitFailureAllowsRetry(t *testing.T) {
	var attempts int32
	Register("loader-flaky", func() engine.Scene {
		return &flakyScene{attempts: &attempts}
	})

	l := NewLoader(&engine.Env{}, nil)

	_, err := l.Load(context.Background(), "loader-flaky")
	if err == nil {
		t.Fatal("Load() = nil error for a failing Init")
	}
	if l.IsLoaded("loader-flaky") {
		t.Error("Scene marked loaded after failed Init")
	}

	if _, err := l.Load(context.Background(), "loader-flaky"); err != nil {
		t.Errorf("Retry after failed Init failed: %v", err)
	}
}

type flakyScene struct {
	stubScene
	attempts *int32
}

func (f *flakyScene) Key() string   { return "loader-flaky" }
func (f *flakyScene) Title() string { return "Flaky" }
func (f *flakyScene) Init(ctx context.Context, env *engine.Env) error {
	if atomic.AddInt32(f.attempts, 1) == 1 {
		return errors.New("content missing")
	}
	return nil
}

func TestLoaderUnloadRebuildsScene(t *testing.T) {
	var inits int32
	Register("loader-rebuild", func() engine.Scene {
		return &countedRebuildScene{counter: &inits}
	})

	l := NewLoader(&engine.Env{}, nil)

	first, _ := l.Load(context.Background(), "loader-rebuild")
	l.Unload("loader-rebuild")
	second, err := l.Load(context.Background(), "loader-rebuild")
	if err != nil {
		t.Fatalf("Load() after Unload failed: %v", err)
	}

	if first == second {
		t.Error("Unload did not discard the scene instance")
	}
	if inits != 2 {
		t.Errorf("Init ran %d times across a rebuild, want 2", inits)
	}
}

type countedRebuildScene struct {
	stubScene
	counter *int32
}

func (c *countedRebuildScene) Key() string   { return "loader-rebuild" }
func (c *countedRebuildScene) Title() string { return "Rebuild" }
func (c *countedRebuildScene) Init(ctx context.Context, env *engine.Env) error {
	atomic.AddInt32(c.counter, 1)
	return nil
}
