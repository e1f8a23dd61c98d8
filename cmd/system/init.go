package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/simorq_portal/pkg/database"
)

func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the portal and policy databases if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cfg)
			defer cancel()

			if err := database.InitializeDatabases(ctx, cfg); err != nil {
				return fmt.Errorf("initialize databases: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "databases ready")
			return nil
		},
	}
}
