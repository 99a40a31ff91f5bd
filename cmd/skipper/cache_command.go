package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skipper/internal/analysis"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the analysis cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *analysis.Cache) error {
				results, err := cache.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintln(out, "Cache is empty.")
					return nil
				}

				fmt.Fprintln(out, renderCacheTable(results))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *analysis.Cache) error {
				removed, err := cache.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached analysis entries\n", removed)
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove cached analyses past the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *analysis.Cache) error {
				removed, err := cache.Sweep(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired analysis entries\n", removed)
				return nil
			})
		},
	}
}
