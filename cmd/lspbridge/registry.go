package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lspbridge/lspbridge/internal/monorepo"
	"github.com/lspbridge/lspbridge/internal/registry"
)

var (
	registerName     string
	registerPath     string
	registerRemote   string
	registerLanguage string
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the multi-repository registry",
}

var registryRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a repository under a new id, detecting monorepo layout under its path",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadOrCreate(dbPath, logger)
		if err != nil {
			return fmt.Errorf("open registry: %w", err)
		}
		defer reg.Close()

		info := registry.RepositoryInfo{
			ID:              uuid.NewString(),
			Name:            registerName,
			Path:            registerPath,
			RemoteURL:       registerRemote,
			PrimaryLanguage: registerLanguage,
			BuildSystem:     "npm",
			Active:          true,
			Metadata:        map[string]any{},
		}

		if layout, err := monorepo.Detect(registerPath); err == nil && layout != nil {
			info.IsMonorepoMember = len(layout.Subprojects) > 0
			logger.Info("detected monorepo layout",
				zap.String("kind", string(layout.Kind)),
				zap.Int("subprojects", len(layout.Subprojects)))
		}

		if err := reg.Register(info); err != nil {
			return fmt.Errorf("register repository: %w", err)
		}
		return printJSON(info)
	},
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadOrCreate(dbPath, logger)
		if err != nil {
			return fmt.Errorf("open registry: %w", err)
		}
		defer reg.Close()

		repos, err := reg.ListActive()
		if err != nil {
			return fmt.Errorf("list repositories: %w", err)
		}
		return printJSON(repos)
	},
}

func init() {
	registryRegisterCmd.Flags().StringVar(&registerName, "name", "", "Repository name")
	registryRegisterCmd.Flags().StringVar(&registerPath, "path", "", "Repository root path")
	registryRegisterCmd.Flags().StringVar(&registerRemote, "remote", "", "Remote URL")
	registryRegisterCmd.Flags().StringVar(&registerLanguage, "language", "", "Primary language")
	registryRegisterCmd.MarkFlagRequired("name")
	registryRegisterCmd.MarkFlagRequired("path")

	registryCmd.AddCommand(registryRegisterCmd, registryListCmd)
}
