package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"skipper/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if overwrite {
				if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove existing config: %w", err)
				}
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set classifier.api_key (or export SKIPPER_API_KEY) before analyzing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data directory:       %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Log directory:        %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Auto skip:            %s\n", yesNo(cfg.Skip.AutoSkip))
			fmt.Fprintf(out, "Skip preview:         %s\n", yesNo(cfg.Skip.EnablePreview))
			fmt.Fprintf(out, "Skip buffer:          %.1fs\n", cfg.Skip.Buffer)
			fmt.Fprintf(out, "Model:                %s\n", cfg.Classifier.Model)
			fmt.Fprintf(out, "Confidence threshold: %.2f\n", cfg.Classifier.ConfidenceThreshold)
			fmt.Fprintf(out, "API key set:          %s\n", yesNo(cfg.Classifier.APIKey != ""))
			fmt.Fprintf(out, "Cache retention:      %d days\n", cfg.Cache.RetentionDays)

			categories := cfg.EnabledCategories()
			names := make([]string, 0, len(categories))
			for _, category := range categories {
				names = append(names, string(category))
			}
			if len(names) == 0 {
				fmt.Fprintln(out, "Skip categories:      none")
			} else {
				fmt.Fprintf(out, "Skip categories:      %s\n", strings.Join(names, ", "))
			}
			if len(cfg.ChannelWhitelist) > 0 {
				fmt.Fprintf(out, "Whitelisted channels: %s\n", strings.Join(cfg.ChannelWhitelist, ", "))
			}
			return nil
		},
	}
}
