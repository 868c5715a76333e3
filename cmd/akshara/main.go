// akshara is a terminal arcade of language-learning mini-games.
//
// Usage:
//
//	akshara list               - List available scenes
//	akshara play [scene]       - Play, starting at the menu or a scene
//	akshara preload [category] - Warm the content cache
//	akshara progress           - Show saved progress
//
// Global flags:
//
//	--config <path>  - Path to a custom config YAML
//	--db <path>      - Set save database path (default: ~/.akshara/save.db)
//	--debug          - Enable debug logging and dispatch tracing
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import scenes to register them
	_ "github.com/akshara-arcade/akshara/internal/scenes/alphabet"
	_ "github.com/akshara-arcade/akshara/internal/scenes/menu"
	_ "github.com/akshara-arcade/akshara/internal/scenes/vocabulary"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
	flagDebug  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "akshara",
	Short: "Akshara - learn a script, one game at a time",
	Long: `Akshara is a terminal platform of small language-learning games:
alphabet drills, vocabulary flashcards and whatever else the catalog
registers.

Available commands:
  list      - Show all available scenes
  play      - Start the platform, optionally at a specific scene
  preload   - Warm the content cache for one or all categories
  progress  - View saved preferences and progress

Examples:
  akshara list
  akshara play
  akshara play alphabet
  akshara preload vocabulary
  akshara progress`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to save database (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(preloadCmd)
	rootCmd.AddCommand(progressCmd)
}
