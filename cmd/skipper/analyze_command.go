package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skipper/internal/analysis"
	"skipper/internal/logging"
	"skipper/internal/segment"
	"skipper/internal/services/classifier"
	"skipper/internal/store"
	"skipper/internal/transcript"
)

// fileAcquirer serves a transcript parsed from a local file, letting the
// analyze command reuse the full pipeline without a live player.
type fileAcquirer struct {
	entries []transcript.Entry
}

func (f *fileAcquirer) Acquire(_ context.Context, videoID, channelID string) (*transcript.Transcript, error) {
	return &transcript.Transcript{
		VideoID:   videoID,
		ChannelID: channelID,
		Entries:   f.entries,
	}, nil
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var videoID string
	var channelID string
	var title string
	var transcriptPath string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify a transcript file and print the skippable segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			content, err := os.ReadFile(transcriptPath)
			if err != nil {
				return fmt.Errorf("read transcript file: %w", err)
			}
			entries, err := transcript.ParseDocument(string(content))
			if err != nil {
				return err
			}

			kv, err := store.OpenSQLite(cfg.CacheDBPath())
			if err != nil {
				return err
			}
			defer kv.Close()

			logger := logging.NewNop()
			cache := analysis.NewCache(kv, cfg.Cache.RetentionDays, logger)
			if noCache {
				if err := cache.Remove(cmd.Context(), videoID); err != nil {
					return err
				}
			}

			client := classifier.NewClient(classifier.Config{
				APIKey:         cfg.Classifier.APIKey,
				BaseURL:        cfg.Classifier.BaseURL,
				Model:          cfg.Classifier.Model,
				Referer:        cfg.Classifier.Referer,
				Title:          cfg.Classifier.Title,
				TimeoutSeconds: cfg.Classifier.TimeoutSeconds,
			})

			set := segment.NewSet(logger)
			orch := analysis.NewOrchestrator(&fileAcquirer{entries: entries}, client, cache, set, cfg, logger)

			result, err := orch.Analyze(cmd.Context(), videoID, channelID, title)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			intervals := set.Intervals()
			if len(intervals) == 0 {
				fmt.Fprintln(out, "No skippable segments found.")
				return nil
			}

			fmt.Fprintln(out, renderSegmentTable(intervals))
			fmt.Fprintf(out, "%d segment(s), %s skippable (model %s)\n",
				len(intervals), formatOffset(set.TotalDuration()), result.Model)
			return nil
		},
	}

	cmd.Flags().StringVar(&videoID, "video-id", "", "11-character video identifier")
	cmd.Flags().StringVar(&channelID, "channel-id", "", "Channel identifier, used for whitelist checks")
	cmd.Flags().StringVar(&title, "title", "", "Video title passed to the classifier")
	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Transcript file (timestamped lines or caption JSON)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Discard any cached analysis before running")
	_ = cmd.MarkFlagRequired("video-id")
	_ = cmd.MarkFlagRequired("transcript")

	return cmd
}
