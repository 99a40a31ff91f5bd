package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skipper/internal/logging"
	"skipper/internal/preflight"
	"skipper/internal/services/classifier"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var skipNetwork bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Run environment checks and report readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var health preflight.HealthChecker
			if !skipNetwork && cfg.Classifier.APIKey != "" {
				health = classifier.NewClient(classifier.Config{
					APIKey:         cfg.Classifier.APIKey,
					BaseURL:        cfg.Classifier.BaseURL,
					Model:          cfg.Classifier.Model,
					Referer:        cfg.Classifier.Referer,
					Title:          cfg.Classifier.Title,
					TimeoutSeconds: cfg.Classifier.TimeoutSeconds,
				})
			}

			result := preflight.Run(cmd.Context(), cfg, health, logging.NewNop())

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, check := range result.Checks {
				fmt.Fprintln(out, renderCheckLine(check, colorize))
			}

			if !result.Ok() {
				return fmt.Errorf("environment not ready")
			}
			fmt.Fprintln(out, "Ready.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipNetwork, "offline", false, "Skip the classifier API reachability check")
	return cmd
}
