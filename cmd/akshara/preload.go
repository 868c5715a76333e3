package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/akshara-arcade/akshara/internal/assets"
	"github.com/akshara-arcade/akshara/internal/config"
)

var preloadCmd = &cobra.Command{
	Use:   "preload [category]",
	Short: "Warm the content cache",
	Long: `Load one content category, or every category the manifest declares,
and report what was read. Useful for validating custom manifests and
content files.

Examples:
  akshara preload
  akshara preload vocabulary
  akshara preload --config ./my-config.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPreload,
}

func runPreload(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	manifest, err := assets.LoadManifest(cfg.Manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	library := assets.NewLibrary(manifest, cfg.AssetsDir, log.Default())

	categories := library.CategoryNames()
	if len(args) == 1 {
		categories = args
	}
	sort.Strings(categories)

	if err := library.Preload(context.Background(), categories...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, name := range categories {
		fmt.Printf("  %-12s loaded (progress %.0f%%)\n", name, library.Progress(name)*100)
	}
}
