// Package registry provides a service container for the runtime.
// Services are registered by name, either as ready-built instances or as
// lazy factories, and resolved on demand. Factories may resolve other
// services during construction; circular construction is detected and
// rejected.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Errors reported by the registry.
var (
	ErrNilFactory = errors.New("registry: factory must not be nil")
	ErrCircular   = errors.New("registry: circular dependency")
)

// Factory builds a service on first resolution. It receives the registry
// so the service can resolve its own dependencies.
type Factory func(r *Registry) (any, error)

// Initializer is an optional startup hook on a registered service.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Destroyer is an optional teardown hook on a registered service.
type Destroyer interface {
	Destroy(ctx context.Context) error
}

// Registry is the service container.
type Registry struct {
	mu           sync.Mutex
	services     map[string]any
	factories    map[string]Factory
	singletons   map[string]bool
	constructing map[string]bool
	logger       *log.Logger
}

// New creates an empty registry.
func New(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		services:     make(map[string]any),
		factories:    make(map[string]Factory),
		singletons:   make(map[string]bool),
		constructing: make(map[string]bool),
		logger:       logger.WithPrefix("registry"),
	}
}

// Register stores an already-built service instance. Re-registering a
// name overwrites the previous entry with a warning.
func (r *Registry) Register(name string, instance any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		r.logger.Warn("overwriting registered service", "name", name)
	}
	r.services[name] = instance
}

// RegisterFactory stores a lazy factory for the named service. The
// factory runs on every resolution unless the name is re-registered.
func (r *Registry) RegisterFactory(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("%w (service %q)", ErrNilFactory, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		r.logger.Warn("overwriting registered factory", "name", name)
	}
	r.factories[name] = factory
	delete(r.singletons, name)
	return nil
}

// RegisterSingleton stores a lazy factory whose result is cached after
// the first resolution and reused for every later lookup.
func (r *Registry) RegisterSingleton(name string, factory Factory) error {
	if err := r.RegisterFactory(name, factory); err != nil {
		return err
	}
	r.mu.Lock()
	r.singletons[name] = true
	r.mu.Unlock()
	return nil
}

// Get resolves a service by name. Instantiated services (including cached
// singleton results) are returned directly; otherwise a registered
// factory is invoked. An unknown name is a normal outcome: Get logs a
// warning and returns (nil, nil). A factory that synchronously resolves
// its own name, directly or through other pending factories, fails with
// ErrCircular naming the offending service; the construction mark is
// cleared on every exit path so the name stays resolvable afterwards.
func (r *Registry) Get(name string) (any, error) {
	r.mu.Lock()
	if instance, ok := r.services[name]; ok {
		r.mu.Unlock()
		return instance, nil
	}
	factory, ok := r.factories[name]
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("service not found", "name", name)
		return nil, nil
	}
	if r.constructing[name] {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrCircular, name)
	}
	r.constructing[name] = true
	singleton := r.singletons[name]
	r.mu.Unlock()

	// The lock is released while the factory runs so the factory can
	// resolve its own dependencies through this registry.
	instance, err := factory(r)

	r.mu.Lock()
	delete(r.constructing, name)
	if err == nil && singleton {
		r.services[name] = instance
	}
	r.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("registry: constructing %q: %w", name, err)
	}
	return instance, nil
}

// Has reports whether a name is registered as an instance or a factory.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[name]; ok {
		return true
	}
	_, ok := r.factories[name]
	return ok
}

// Unregister removes a name entirely: instance, factory and singleton
// mark. Required before a resolved singleton may be replaced.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, name)
	delete(r.factories, name)
	delete(r.singletons, name)
}

// Names returns the names of all instantiated services, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitializeAll concurrently invokes the Initialize hook on every
// currently-instantiated service that has one. Per-service failures are
// logged and collected; the call waits for every hook to settle and
// returns the joined failures, if any.
func (r *Registry) InitializeAll(ctx context.Context) error {
	return r.forEachHook(ctx, "initialize", func(svc any) func(context.Context) error {
		if init, ok := svc.(Initializer); ok {
			return init.Initialize
		}
		return nil
	})
}

// DestroyAll concurrently invokes the Destroy hook on every instantiated
// service, waits for all to settle, then clears every internal map.
// Failures are logged and collected, never short-circuited.
func (r *Registry) DestroyAll(ctx context.Context) error {
	err := r.forEachHook(ctx, "destroy", func(svc any) func(context.Context) error {
		if d, ok := svc.(Destroyer); ok {
			return d.Destroy
		}
		return nil
	})

	r.mu.Lock()
	r.services = make(map[string]any)
	r.factories = make(map[string]Factory)
	r.singletons = make(map[string]bool)
	r.constructing = make(map[string]bool)
	r.mu.Unlock()
	return err
}

func (r *Registry) forEachHook(ctx context.Context, op string, hook func(any) func(context.Context) error) error {
	r.mu.Lock()
	instances := make(map[string]any, len(r.services))
	for name, svc := range r.services {
		instances[name] = svc
	}
	r.mu.Unlock()

	var (
		g      errgroup.Group
		errsMu sync.Mutex
		errs   []error
	)
	for name, svc := range instances {
		fn := hook(svc)
		if fn == nil {
			continue
		}
		g.Go(func() error {
			if err := fn(ctx); err != nil {
				r.logger.Error("service hook failed", "op", op, "name", name, "err", err)
				errsMu.Lock()
				errs = append(errs, fmt.Errorf("registry: %s %q: %w", op, name, err))
				errsMu.Unlock()
			}
			// Failures are collected, not returned, so one service
			// cannot short-circuit the others.
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
