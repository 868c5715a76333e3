package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/akshara-arcade/akshara/internal/loader"
)

// Asset is one loaded content file.
type Asset struct {
	Descriptor
	Data []byte
}

// DecodeJSON unmarshals a json-typed asset into out.
func (a *Asset) DecodeJSON(out any) error {
	if a.Type != TypeJSON {
		return fmt.Errorf("assets: %q is %s, not json", a.Key, a.Type)
	}
	if err := json.Unmarshal(a.Data, out); err != nil {
		return fmt.Errorf("assets: decoding %q: %w", a.Key, err)
	}
	return nil
}

// Text returns the asset contents as a string. Useful for image-typed
// assets, which are ASCII art files in the terminal build.
func (a *Asset) Text() string {
	return string(a.Data)
}

// Category is a fully loaded content category.
type Category struct {
	Name  string
	Items map[string]*Asset
}

// Asset returns a loaded asset by key.
func (c *Category) Asset(key string) (*Asset, bool) {
	a, ok := c.Items[key]
	return a, ok
}

// Library loads content categories on demand. Loading the same category
// twice concurrently performs a single read of the underlying files, and
// completed categories are memoized until unloaded.
type Library struct {
	manifest Manifest
	baseDir  string
	loader   *loader.Loader[*Category]
	logger   *log.Logger
}

// NewLibrary creates a library reading content files relative to
// baseDir, as laid out by the manifest.
func NewLibrary(manifest Manifest, baseDir string, logger *log.Logger) *Library {
	if logger == nil {
		logger = log.Default()
	}
	l := &Library{
		manifest: manifest,
		baseDir:  baseDir,
		logger:   logger.WithPrefix("assets"),
	}
	l.loader = loader.New(l.fetchCategory, nil, logger)
	return l
}

// fetchCategory reads every file in a category, reporting fractional
// progress per completed descriptor.
func (l *Library) fetchCategory(ctx context.Context, name string, report func(float64)) (*Category, error) {
	descriptors, ok := l.manifest.Category(name)
	if !ok {
		return nil, fmt.Errorf("assets: unknown category %q", name)
	}

	cat := &Category{Name: name, Items: make(map[string]*Asset, len(descriptors))}
	for i, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(l.baseDir, d.Path))
		if err != nil {
			return nil, fmt.Errorf("assets: reading %q (%s): %w", d.Key, d.Path, err)
		}
		if d.Type == TypeJSON && !json.Valid(data) {
			return nil, fmt.Errorf("assets: %q (%s) is not valid JSON", d.Key, d.Path)
		}
		cat.Items[d.Key] = &Asset{Descriptor: d, Data: data}
		report(float64(i+1) / float64(len(descriptors)))
	}
	l.logger.Debug("category loaded", "name", name, "items", len(cat.Items))
	return cat, nil
}

// Load returns the named category, reading it from disk on first use.
func (l *Library) Load(ctx context.Context, category string) (*Category, error) {
	return l.loader.Load(ctx, category)
}

// Preload loads several categories concurrently, settling only when all
// have loaded or failing with the first error.
func (l *Library) Preload(ctx context.Context, categories ...string) error {
	return l.loader.LoadMultiple(ctx, categories...)
}

// IsLoaded reports whether a category has finished loading.
func (l *Library) IsLoaded(category string) bool {
	return l.loader.IsLoaded(category)
}

// Unload frees a loaded category. Unloading an unknown or never-loaded
// category is a no-op.
func (l *Library) Unload(category string) {
	l.loader.Unload(category)
}

// Progress reports 1 for a loaded category, the completed fraction while
// loading, and 0 otherwise.
func (l *Library) Progress(category string) float64 {
	return l.loader.Progress(category)
}

// CategoryNames returns every category the manifest declares, loaded or
// not.
func (l *Library) CategoryNames() []string {
	names := make([]string, 0, len(l.manifest.Categories))
	for name := range l.manifest.Categories {
		names = append(names, name)
	}
	return names
}
