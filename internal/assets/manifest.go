// Package assets provides the content manifest and the lazy asset
// library. The manifest maps category names to ordered lists of content
// descriptors; the library loads whole categories on demand,
// de-duplicating concurrent loads through the generic loader.
package assets

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/manifest.yaml
var defaultManifestYAML []byte

// Type classifies a content descriptor.
type Type string

// Supported content types.
const (
	TypeJSON        Type = "json"
	TypeImage       Type = "image"
	TypeAudio       Type = "audio"
	TypeSpritesheet Type = "spritesheet"
)

// FrameConfig describes spritesheet slicing.
type FrameConfig struct {
	FrameWidth  int `yaml:"frame_width"`
	FrameHeight int `yaml:"frame_height"`
}

// Descriptor names one content file within a category.
type Descriptor struct {
	Type   Type         `yaml:"type"`
	Key    string       `yaml:"key"`
	Path   string       `yaml:"path"`
	Frames *FrameConfig `yaml:"frames,omitempty"`
}

// Manifest maps category names to their content descriptors.
type Manifest struct {
	Categories map[string][]Descriptor `yaml:"categories"`
}

// Category returns the descriptors for a category name.
func (m Manifest) Category(name string) ([]Descriptor, bool) {
	d, ok := m.Categories[name]
	return d, ok
}

// LoadManifest loads the content manifest.
// Search order: customPath -> ~/.akshara/manifest.yaml -> ./configs/manifest.yaml -> embedded default
func LoadManifest(customPath string) (Manifest, error) {
	var m Manifest

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return m, fmt.Errorf("assets: failed to read manifest %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &m); err != nil {
			return m, fmt.Errorf("assets: failed to parse manifest %s: %w", customPath, err)
		}
		return m, nil
	}

	// Try user config directory
	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ".akshara", "manifest.yaml")
		if data, err := os.ReadFile(userPath); err == nil {
			if err := yaml.Unmarshal(data, &m); err == nil {
				return m, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/manifest.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &m); err == nil {
			return m, nil
		}
	}

	// Use embedded default
	if err := yaml.Unmarshal(defaultManifestYAML, &m); err != nil {
		return m, fmt.Errorf("assets: failed to parse embedded manifest: %w", err)
	}
	return m, nil
}
