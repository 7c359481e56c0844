// Command lspbridge is the CLI entry point for the diagnostic intelligence
// engine: converting raw tool output, querying historical snapshots, and
// managing the multi-repository registry.
//
// Structure mirrors cmd/nerd/main.go: a root command builds a production
// zap logger in PersistentPreRunE and syncs it in PersistentPostRun; every
// subcommand is a thin wrapper delegating into internal/... packages.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lspbridge/lspbridge/internal/logging"
)

var (
	verbose  bool
	dbPath   string
	cfgPath  string
	logLevel string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lspbridge",
	Short: "lspbridge - multi-repository diagnostic intelligence engine",
	Long: `lspbridge normalizes LSP and linter diagnostics from many tools into a
single canonical record, keeps a historical snapshot store, tracks a
registry of repositories with cross-repo relations, and answers questions
about all of it through a SQL-like query language.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Options{Verbose: verbose, Component: cmd.Name()})
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "lspbridge.db", "Path to the SQLite database (history or registry)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "lspbridge.toml", "Path to the dynamic configuration file")

	rootCmd.AddCommand(
		convertCmd,
		historyCmd,
		registryCmd,
		queryCmd,
		configCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
