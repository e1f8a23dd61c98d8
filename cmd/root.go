package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/Alijeyrad/simorq_portal/cmd/http"
	systemcmd "github.com/Alijeyrad/simorq_portal/cmd/system"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "portal",
		Short: "Clinic patient portal backend",
		Long: `Patient portal backend for a clinic. Staff invite patients, publish exams,
recommendations and news, and share exam documents through revocable links.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "config.yaml", "config file, or a directory holding config.yaml")
	root.AddCommand(httpcmd.NewHTTPCommand(), systemcmd.NewSystemCommand())
	return root
}

func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
