package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/spool/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [entries...]",
		Short: "Render asset modules into the output directory",
		Long: "Render every <name>.<ext>.js module below the source directory to <name>.<ext> " +
			"in the output directory. Entries may be given by source or output path.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noCache, _ := cmd.Flags().GetBool("no-cache")
			report, _ := cmd.Flags().GetString("report")
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			return c.app.Build(cmd.Context(), app.BuildOptions{
				ConfigPath:  configPath(cmd),
				Entries:     args,
				NoCache:     noCache,
				Concurrency: concurrency,
				ReportPath:  report,
			})
		},
	}
	cmd.Flags().BoolP("no-cache", "n", false, "Render every entry even when its output is up to date")
	cmd.Flags().String("report", "", "Write the build report as JSON to this file")
	cmd.Flags().IntP("concurrency", "j", 0, "Entries built at once (default: configured value or number of CPUs)")
	return cmd
}
