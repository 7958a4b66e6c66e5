// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-rmf/meshconv/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List past conversion runs",
	Long: `History lists recent conversion runs recorded in the local SQLite
database. With a run ID argument it prints that run's per-file outcomes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	store, err := history.NewStore(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		files, err := store.RunFiles(args[0])
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintf(os.Stderr, "no conversions recorded for run %s\n", args[0])
			return nil
		}
		for _, f := range files {
			fmt.Printf("%-14s %s -> %s\n", f.Status, f.Source, f.Output)
			if f.Error != "" {
				fmt.Printf("               %s\n", f.Error)
			}
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		outDir := r.OutDir
		if outDir == "" {
			outDir = "(next to sources)"
		}
		fmt.Printf("%s  %s  %s  %d converted, %d skipped, %d failed\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), outDir,
			r.Converted, r.Skipped, r.Failed)
	}
	return nil
}
