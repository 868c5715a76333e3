// Package loader provides on-demand loading with per-key in-flight
// de-duplication and memoization. Loader is generic over the loadable
// unit: the asset library instantiates it with content categories, the
// scene catalog with scenes.
package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Fetch performs the underlying load for one key. It may call report
// with a completion fraction in [0,1] as the load advances.
type Fetch[T any] func(ctx context.Context, key string, report func(float64)) (T, error)

// Release frees a loaded value when its key is unloaded. Optional.
type Release[T any] func(key string, value T)

type flight[T any] struct {
	done     chan struct{}
	value    T
	err      error
	mu       sync.Mutex
	progress float64
}

func (f *flight[T]) report(p float64) {
	f.mu.Lock()
	if p > f.progress {
		f.progress = p
	}
	f.mu.Unlock()
}

// Loader tracks per-key load state: unloaded, loading (an in-flight
// fetch exists) or loaded (memoized). Concurrent loads for the same key
// share one underlying fetch.
type Loader[T any] struct {
	mu      sync.Mutex
	fetch   Fetch[T]
	release Release[T]
	loaded  map[string]T
	pending map[string]*flight[T]
	logger  *log.Logger
}

// New creates a loader around the given fetch function. release may be
// nil when the loaded values need no explicit teardown.
func New[T any](fetch Fetch[T], release Release[T], logger *log.Logger) *Loader[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader[T]{
		fetch:   fetch,
		release: release,
		loaded:  make(map[string]T),
		pending: make(map[string]*flight[T]),
		logger:  logger.WithPrefix("loader"),
	}
}

// IsLoaded reports whether the key has completed loading.
func (l *Loader[T]) IsLoaded(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.loaded[key]
	return ok
}

// Load returns the value for key, fetching it if needed. A completed
// load is returned immediately; if a load for the key is already in
// flight the call waits on that load instead of starting a second one.
// On failure the key returns to the unloaded state so a retry can start
// a fresh load.
func (l *Loader[T]) Load(ctx context.Context, key string) (T, error) {
	l.mu.Lock()
	if v, ok := l.loaded[key]; ok {
		l.mu.Unlock()
		return v, nil
	}
	if f, ok := l.pending[key]; ok {
		l.mu.Unlock()
		return l.wait(ctx, key, f)
	}
	f := &flight[T]{done: make(chan struct{})}
	l.pending[key] = f
	l.mu.Unlock()

	value, err := l.runFetch(ctx, key, f)

	l.mu.Lock()
	delete(l.pending, key)
	if err == nil {
		l.loaded[key] = value
	}
	l.mu.Unlock()

	f.value = value
	if err != nil {
		f.err = fmt.Errorf("loader: loading %q: %w", key, err)
	}
	close(f.done)

	if f.err != nil {
		l.logger.Warn("load failed", "key", key, "err", err)
		var zero T
		return zero, f.err
	}
	return value, nil
}

// runFetch invokes the fetch with panic isolation. A panicking fetch
// becomes a load error, so the pending bookkeeping and the done channel
// are settled on every exit path and the key never stays in-flight.
func (l *Loader[T]) runFetch(ctx context.Context, key string, f *flight[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return l.fetch(ctx, key, f.report)
}

// wait attaches to an in-flight load. The load itself is never
// cancelled; an expired context abandons only this waiter.
func (l *Loader[T]) wait(ctx context.Context, key string, f *flight[T]) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("loader: waiting for %q: %w", key, ctx.Err())
	}
}

// LoadMultiple loads every key concurrently and returns once all have
// settled successfully, or with the first failure.
func (l *Loader[T]) LoadMultiple(ctx context.Context, keys ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			_, err := l.Load(ctx, key)
			return err
		})
	}
	return g.Wait()
}

// Unload releases the cached value for key and returns it to the
// unloaded state. Unloading a key that was never loaded is a no-op.
func (l *Loader[T]) Unload(key string) {
	l.mu.Lock()
	value, ok := l.loaded[key]
	delete(l.loaded, key)
	l.mu.Unlock()

	if ok && l.release != nil {
		l.release(key, value)
	}
}

// Progress reports 1 for a loaded key, the fetch-reported fraction for a
// key currently loading, and 0 otherwise.
func (l *Loader[T]) Progress(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.loaded[key]; ok {
		return 1
	}
	if f, ok := l.pending[key]; ok {
		f.mu.Lock()
		p := f.progress
		f.mu.Unlock()
		return p
	}
	return 0
}

// LoadedKeys returns the keys currently in the loaded state, unordered.
func (l *Loader[T]) LoadedKeys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := make([]string, 0, len(l.loaded))
	for k := range l.loaded {
		keys = append(keys, k)
	}
	return keys
}
