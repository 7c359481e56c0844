package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lspbridge/lspbridge/internal/convert"
)

var convertSourceTag string

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a raw tool output file into canonical diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse %s as JSON: %w", args[0], err)
		}

		raw := convert.RawDiagnostics{SourceTag: convertSourceTag, Payload: payload}
		diags, err := convert.NewDispatcher().Convert(raw)
		if err != nil {
			return fmt.Errorf("convert: %w", err)
		}

		logger.Info("converted diagnostics", zap.Int("count", len(diags)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diags)
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertSourceTag, "source", "", "Hint for the source converter (typescript, rust-analyzer, eslint, lsp)")
}
