// Package config provides YAML-based application configuration for the
// akshara runtime.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/config.yaml
var defaultConfigYAML []byte

// Config is the application configuration.
type Config struct {
	Debug      bool   `yaml:"debug"`
	Locale     string `yaml:"locale"`
	DBPath     string `yaml:"db"`
	AssetsDir  string `yaml:"assets_dir"`
	Manifest   string `yaml:"manifest"`
	StartScene string `yaml:"start_scene"`
}

// Default returns the hardcoded fallback configuration.
func Default() Config {
	return Config{
		Debug:      false,
		Locale:     "en",
		DBPath:     "~/.akshara/save.db",
		AssetsDir:  "assets",
		StartScene: "menu",
	}
}

// Load loads the application configuration.
// Search order: customPath -> ~/.akshara/config.yaml -> ./configs/config.yaml -> embedded default
func Load(customPath string) (Config, error) {
	var cfg Config

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return withDefaults(cfg), nil
	}

	// Try user config directory
	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ".akshara", "config.yaml")
		if data, err := os.ReadFile(userPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return withDefaults(cfg), nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return withDefaults(cfg), nil
		}
	}

	// Use embedded default
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return withDefaults(cfg), nil
}

// withDefaults fills unset fields from the hardcoded defaults.
func withDefaults(cfg Config) Config {
	def := Default()
	if cfg.Locale == "" {
		cfg.Locale = def.Locale
	}
	if cfg.DBPath == "" {
		cfg.DBPath = def.DBPath
	}
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = def.AssetsDir
	}
	if cfg.StartScene == "" {
		cfg.StartScene = def.StartScene
	}
	return cfg
}
