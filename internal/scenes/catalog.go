// Package scenes provides the scene catalog and the lazy scene loader.
// Scene packages register themselves in init() functions, allowing the
// platform to discover and start scenes without hardcoded dependencies.
package scenes

import (
	"fmt"
	"sort"
	"sync"

	"github.com/akshara-arcade/akshara/internal/engine"
)

// SceneInfo contains metadata about a registered scene.
type SceneInfo struct {
	Key   string
	Title string
}

// Factory is a function that creates a new instance of a scene.
type Factory func() engine.Scene

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a scene factory to the catalog.
// Typically called from a scene's init() function.
// Panics if a scene with the same key is already registered.
func Register(key string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[key]; exists {
		panic(fmt.Sprintf("scenes: scene %q already registered", key))
	}

	factories[key] = f

	// Get title by creating a temporary instance
	s := f()
	titles[key] = s.Title()
}

// List returns information about all registered scenes, sorted by key.
func List() []SceneInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SceneInfo, 0, len(factories))
	for key := range factories {
		result = append(result, SceneInfo{
			Key:   key,
			Title: titles[key],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// Create instantiates a new scene by its key.
// Returns an error if the scene key is not registered.
func Create(key string) (engine.Scene, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[key]
	if !ok {
		return nil, fmt.Errorf("scenes: unknown scene %q", key)
	}

	return f(), nil
}

// Exists checks if a scene with the given key is registered.
func Exists(key string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[key]
	return ok
}
