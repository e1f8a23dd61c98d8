package system

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
	"github.com/Alijeyrad/simorq_portal/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	var skipPolicies bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create portal tables and seed the default staff policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cfg)
			defer cancel()

			client, err := database.NewEntClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("open portal db: %w", err)
			}
			defer client.Close()

			if err := database.MigrateEnt(ctx, client); err != nil {
				return err
			}
			slog.Info("portal schema migrated")

			if skipPolicies {
				return nil
			}
			auth, release, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer release()

			if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
				return fmt.Errorf("seed policies: %w", err)
			}
			slog.Info("staff policies seeded")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPolicies, "skip-policies", false, "only migrate the portal schema")
	return cmd
}
