package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lspbridge/lspbridge/internal/dynconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the dynamic configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Load the configuration (file layered with environment overrides) and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := dynconfig.New(context.Background(), cfgPath, logger)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return printJSON(mgr.GetConfig())
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration and report any validation errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := dynconfig.New(context.Background(), cfgPath, logger)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := mgr.ValidateCurrent(); err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		fmt.Println("config is valid")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configValidateCmd)
}
