package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/akshara-arcade/akshara/internal/config"
	"github.com/akshara-arcade/akshara/internal/state"
	"github.com/akshara-arcade/akshara/internal/storage"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show saved progress",
	Long: `Print the preferences and progress persisted by past play sessions.

Examples:
  akshara progress
  akshara progress --db ./save.db`,
	Run: runProgress,
}

func runProgress(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	raw, ok, err := db.Get(state.ProgressKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Println("No saved progress yet. Play something first!")
		return
	}

	var progress state.Progress
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		fmt.Fprintf(os.Stderr, "Error: saved progress is corrupt: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Scores:")
	keys := make([]string, 0, len(progress.Scores))
	for k := range progress.Scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-12s %d\n", k, progress.Scores[k])
	}

	if len(progress.CompletedLessons) > 0 {
		fmt.Println("Completed lessons:")
		for _, lesson := range progress.CompletedLessons {
			fmt.Printf("  %s\n", lesson)
		}
	}
	if len(progress.Achievements) > 0 {
		fmt.Println("Achievements:")
		for _, a := range progress.Achievements {
			fmt.Printf("  %s\n", a)
		}
	}
	if progress.PlayTimeSecs > 0 {
		fmt.Printf("Play time: %ds\n", progress.PlayTimeSecs)
	}
}
