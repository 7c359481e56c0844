package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lspbridge/lspbridge/internal/history"
)

var historyMinOccurrences int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the historical diagnostic snapshot store",
}

var historyPatternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List recurring error patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(history.DefaultConfig(dbPath), logger)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()

		patterns, err := store.GetRecurringPatterns(historyMinOccurrences)
		if err != nil {
			return fmt.Errorf("get recurring patterns: %w", err)
		}
		return printJSON(patterns)
	},
}

var historyFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Show the snapshot history and stats for one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(history.DefaultConfig(dbPath), logger)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()

		stats, found, err := store.GetFileHistoryStats(args[0])
		if err != nil {
			return fmt.Errorf("get file history stats: %w", err)
		}
		if !found {
			return fmt.Errorf("no history recorded for %s", args[0])
		}
		return printJSON(stats)
	},
}

func init() {
	historyPatternsCmd.Flags().IntVar(&historyMinOccurrences, "min-occurrences", 2, "Minimum occurrence count to include a pattern")
	historyCmd.AddCommand(historyPatternsCmd, historyFileCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
