package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/spool/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve asset modules, rendering them on request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			watch, _ := cmd.Flags().GetBool("watch")

			return c.app.Serve(cmd.Context(), app.ServeOptions{
				ConfigPath: configPath(cmd),
				Addr:       addr,
				Watch:      watch,
			})
		},
	}
	cmd.Flags().StringP("addr", "a", "", "Listen address (default: serve.addr from spool.yaml or :8080)")
	cmd.Flags().BoolP("watch", "w", false, "Pick up source changes without restarting")
	return cmd
}
