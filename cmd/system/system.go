package system

import "github.com/spf13/cobra"

// NewSystemCommand groups the one-shot operator commands: database setup,
// schema and policy migration, staff bootstrap and CLI docs.
func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Operator commands for database, policies and staff accounts",
	}
	cmd.AddCommand(
		NewInitCommand(),
		NewMigrateCommand(),
		NewCreateStaffCommand(),
		NewGenDocsCommand(),
	)
	return cmd
}
