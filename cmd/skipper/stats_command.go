package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skipper/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show time saved by skipped segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStats(func(repo *stats.Repository) error {
				summary, err := repo.Summarize(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if summary.TotalSkips == 0 {
					fmt.Fprintln(out, "No skips recorded yet.")
					return nil
				}

				fmt.Fprintln(out, renderStatsTable(summary))
				fmt.Fprintf(out, "Total: %d skips, %s saved\n",
					summary.TotalSkips, formatOffset(summary.SecondsSaved))
				return nil
			})
		},
	}

	statsCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete all recorded skip statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStats(func(repo *stats.Repository) error {
				removed, err := repo.Reset(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d skip records\n", removed)
				return nil
			})
		},
	})

	return statsCmd
}
