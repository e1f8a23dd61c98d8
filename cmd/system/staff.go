package system

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/simorq_portal/internal/service/identity"
	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
	"github.com/Alijeyrad/simorq_portal/pkg/database"
	"github.com/Alijeyrad/simorq_portal/pkg/util/password"
)

// NewCreateStaffCommand bootstraps a staff or admin login. Staff accounts are
// never created over HTTP.
func NewCreateStaffCommand() *cobra.Command {
	var (
		email string
		pass  string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a staff or admin login and grant its role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if role != authorize.IdentityRoleStaff && role != authorize.IdentityRoleAdmin {
				return fmt.Errorf("role must be %s or %s", authorize.IdentityRoleStaff, authorize.IdentityRoleAdmin)
			}
			if pass == "" {
				pass = password.Generate(16)
				fmt.Printf("Generated password: %s\n", pass)
			}

			ctx, cancel := commandContext(cfg)
			defer cancel()

			client, err := database.NewEntClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create ent client: %w", err)
			}
			defer client.Close()

			identities := identity.New(client, password.NewHasher(password.FromCentralConfig(cfg.Password)))
			id, err := identities.Create(ctx, email, pass, role)
			if errors.Is(err, identity.ErrIdentityExists) {
				return fmt.Errorf("a login for %s already exists", email)
			}
			if err != nil {
				return fmt.Errorf("failed to create login: %w", err)
			}

			auth, release, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer release()

			if err := authorize.AssignIdentityRole(ctx, auth, id.String(), role); err != nil {
				return fmt.Errorf("failed to grant role: %w", err)
			}

			fmt.Printf("Created %s login %s (%s)\n", role, email, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&pass, "password", "", "login password (generated when empty)")
	cmd.Flags().StringVar(&role, "role", authorize.IdentityRoleStaff, "staff or admin")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
