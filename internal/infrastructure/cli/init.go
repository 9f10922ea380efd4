package cli

import (
	"fmt"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/riskgate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/riskgate/pkg/application"
	"github.com/felixgeelhaar/riskgate/pkg/storage"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .riskgate workspace seeded with the built-in pattern library",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		ws := wiring.NewWorkspace(root)
		service := application.NewInitService(ws.Repo, ws.Audit)

		if err := service.InitializeWorkspace(); err != nil {
			return MapError(fmt.Errorf("failed to initialize workspace: %w", err))
		}
		if err := config.Save(root, config.Default()); err != nil {
			return fmt.Errorf("write %s: %w", storage.ConfigFile, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized riskgate workspace in %s\n", ws.Repo.Dir())
		fmt.Fprintf(cmd.OutOrStdout(), "Edit %s, %s and %s to tailor the analysis.\n", storage.ConfigFile, storage.PatternsFile, storage.TemplatesFile)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
