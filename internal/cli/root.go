package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the planoractl root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planoractl",
		Short: "Operational tooling for the planora RSVP service",
		Long: `planoractl bundles the operational chores that do not belong in the
API server: minting and inspecting RSVP link tokens, producing the
guest import workbook, and applying database migrations.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(NewTokenCommand())
	cmd.AddCommand(NewGuestsCommand())
	cmd.AddCommand(NewMigrateCommand())

	return cmd
}
