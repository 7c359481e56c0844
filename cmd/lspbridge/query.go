package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lspbridge/lspbridge/internal/query"
)

var queryShowAdvice bool

var queryCmd = &cobra.Command{
	Use:   "query <statement...>",
	Short: "Parse and validate a diagnostic query, printing its AST and optimization advice",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stmt := strings.Join(args, " ")

		q, err := query.Parse(stmt)
		if err != nil {
			return fmt.Errorf("parse query: %w", err)
		}

		if errs := query.NewValidator().Validate(&q); len(errs) > 0 {
			for _, e := range errs {
				logger.Warn("query validation failed", zap.Error(e))
			}
			return fmt.Errorf("query failed validation: %d error(s)", len(errs))
		}

		if queryShowAdvice {
			for _, a := range query.Analyze(&q) {
				fmt.Printf("[%v] %s\n", a.Severity, a.Message)
			}
		}

		return printJSON(q)
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryShowAdvice, "advice", false, "Print optimizer advice before the parsed query")
}
