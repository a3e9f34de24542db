package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/spool/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the build info store and caches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			remote, _ := cmd.Flags().GetBool("remote")
			all, _ := cmd.Flags().GetBool("all")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				ConfigPath: configPath(cmd),
				Remote:     remote,
				All:        all,
			})
		},
	}

	cmd.Flags().BoolP("remote", "r", false, "Also drop cached remote modules")
	cmd.Flags().BoolP("all", "a", false, "Remove all spool state and the output directory")

	return cmd
}
