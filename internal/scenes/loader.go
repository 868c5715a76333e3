package scenes

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/akshara-arcade/akshara/internal/engine"
	"github.com/akshara-arcade/akshara/internal/loader"
)

// Loader lazily constructs and initializes scenes from the catalog.
// A scene's Init (its content loading) runs at most once per key, even
// under concurrent Load calls; initialized scenes are memoized until
// unloaded.
type Loader struct {
	env    *engine.Env
	loader *loader.Loader[engine.Scene]
}

// NewLoader creates a scene loader binding loaded scenes to env.
func NewLoader(env *engine.Env, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	l := &Loader{env: env}
	l.loader = loader.New(l.fetchScene, nil, logger)
	return l
}

func (l *Loader) fetchScene(ctx context.Context, key string, report func(float64)) (engine.Scene, error) {
	scene, err := Create(key)
	if err != nil {
		return nil, err
	}
	report(0.5)
	if err := scene.Init(ctx, l.env); err != nil {
		return nil, err
	}
	report(1)
	return scene, nil
}

// Load returns the initialized scene for key, constructing it on first
// use.
func (l *Loader) Load(ctx context.Context, key string) (engine.Scene, error) {
	return l.loader.Load(ctx, key)
}

// LoadMultiple initializes several scenes concurrently.
func (l *Loader) LoadMultiple(ctx context.Context, keys ...string) error {
	return l.loader.LoadMultiple(ctx, keys...)
}

// IsLoaded reports whether a scene has been initialized.
func (l *Loader) IsLoaded(key string) bool {
	return l.loader.IsLoaded(key)
}

// Unload discards an initialized scene so the next Load rebuilds it.
func (l *Loader) Unload(key string) {
	l.loader.Unload(key)
}

// Progress reports scene initialization progress for key.
func (l *Loader) Progress(key string) float64 {
	return l.loader.Progress(key)
}
