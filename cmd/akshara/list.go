package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akshara-arcade/akshara/internal/scenes"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scenes",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available scenes:")
		for _, info := range scenes.List() {
			fmt.Printf("  %-12s %s\n", info.Key, info.Title)
		}
	},
}
