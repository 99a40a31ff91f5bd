package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"skipper/internal/analysis"
	"skipper/internal/logging"
	"skipper/internal/segment"
	"skipper/internal/services"
	"skipper/internal/services/classifier"
	"skipper/internal/session"
	"skipper/internal/store"
	"skipper/internal/transcript"
)

// noopMonitor satisfies the session wiring when no live player exists; watch
// mode only reports analysis outcomes.
type noopMonitor struct{}

func (noopMonitor) Attach(context.Context, string) error { return nil }
func (noopMonitor) Detach()                              {}

// suppliedAcquirer serves transcripts collected up front on the input loop.
// Stdin is read on one goroutine only; the analysis goroutine just looks the
// content up.
type suppliedAcquirer struct {
	mu      sync.Mutex
	entries map[string][]transcript.Entry
}

func newSuppliedAcquirer() *suppliedAcquirer {
	return &suppliedAcquirer{entries: make(map[string][]transcript.Entry)}
}

func (s *suppliedAcquirer) supply(videoID string, entries []transcript.Entry) {
	s.mu.Lock()
	s.entries[videoID] = entries
	s.mu.Unlock()
}

func (s *suppliedAcquirer) Acquire(_ context.Context, videoID, channelID string) (*transcript.Transcript, error) {
	s.mu.Lock()
	entries, ok := s.entries[videoID]
	s.mu.Unlock()
	if !ok {
		return nil, &transcript.NotAvailableError{VideoID: videoID}
	}
	return &transcript.Transcript{VideoID: videoID, ChannelID: channelID, Entries: entries}, nil
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Analyze videos interactively as navigation events arrive on stdin",
		Long: `Reads navigation events from stdin. Each event is a header line

    <video-id> [channel-id] [title...]

followed by transcript lines ("M:SS cue text") terminated by a blank line.
The transcript block may be empty for videos already in the analysis cache.
Each new event cancels any in-flight analysis, mirroring in-page navigation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			kv, err := store.OpenSQLite(cfg.CacheDBPath())
			if err != nil {
				return err
			}
			defer kv.Close()

			logger := logging.NewNop()
			out := cmd.OutOrStdout()

			client := classifier.NewClient(classifier.Config{
				APIKey:         cfg.Classifier.APIKey,
				BaseURL:        cfg.Classifier.BaseURL,
				Model:          cfg.Classifier.Model,
				Referer:        cfg.Classifier.Referer,
				Title:          cfg.Classifier.Title,
				TimeoutSeconds: cfg.Classifier.TimeoutSeconds,
			})
			cache := analysis.NewCache(kv, cfg.Cache.RetentionDays, logger)
			set := segment.NewSet(logger)
			acquirer := newSuppliedAcquirer()
			orch := analysis.NewOrchestrator(acquirer, client, cache, set, cfg, logger)

			mgr := session.NewManager(orch, noopMonitor{}, session.Callbacks{
				OnReady: func(videoID string, result *analysis.Result) {
					fmt.Fprintf(out, "%s: %d segment(s), %s skippable\n",
						videoID, len(result.Segments), formatOffset(result.TotalDuration()))
				},
				OnError: func(videoID, message string) {
					fmt.Fprintf(out, "%s: %s\n", videoID, message)
				},
			}, logger)
			defer mgr.Close()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

			fmt.Fprintln(out, "watching; enter <video-id> [channel-id] [title], transcript lines, blank line; Ctrl-D to stop")
			for scanner.Scan() {
				fields := strings.Fields(scanner.Text())
				if len(fields) == 0 {
					continue
				}
				videoID := fields[0]
				var channelID, title string
				if len(fields) > 1 {
					channelID = fields[1]
				}
				if len(fields) > 2 {
					title = strings.Join(fields[2:], " ")
				}

				var block strings.Builder
				for scanner.Scan() {
					line := scanner.Text()
					if strings.TrimSpace(line) == "" {
						break
					}
					block.WriteString(line)
					block.WriteString("\n")
				}
				if block.Len() > 0 {
					entries, err := transcript.ParseDocument(block.String())
					if err != nil {
						fmt.Fprintf(out, "%s: %s\n", videoID, services.UserMessage(err))
						continue
					}
					acquirer.supply(videoID, entries)
				}

				if err := mgr.HandleNewVideo(cmd.Context(), videoID, channelID, title); err != nil {
					fmt.Fprintf(out, "%s: %v\n", videoID, err)
				}
			}
			return scanner.Err()
		},
	}
}
