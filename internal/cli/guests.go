package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"planora/internal/service"
)

// NewGuestsCommand creates the guests command group.
func NewGuestsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Guest list tooling",
	}

	var out string
	template := &cobra.Command{
		Use:   "template",
		Short: "Write the guest import workbook template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := service.BuildGuestTemplate()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	template.Flags().StringVarP(&out, "out", "o", "guests-template.xlsx", "output file")

	cmd.AddCommand(template)
	return cmd
}
