package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"skipper/internal/logging"
	"skipper/internal/services"
)

const (
	defaultPanelPollInterval = 800 * time.Millisecond
	defaultPanelPollAttempts = 10
	defaultInterceptTimeout  = 10 * time.Second
)

// NotAvailableError reports that no caption data could be obtained for a
// video by any strategy. Terminal for that video's analysis attempt.
type NotAvailableError struct {
	VideoID string
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("transcript not available for video %s", e.VideoID)
}

func (e *NotAvailableError) Unwrap() error {
	return services.ErrTranscriptUnavailable
}

// Acquirer tries extraction strategies strictly in order: panel scan, player
// config scan, network-intercept wait. Strategies never run concurrently:
// each runs to exhaustion before the next is tried. Successful results are
// memoized per video so repeated calls short-circuit.
type Acquirer struct {
	panel        PanelSource
	playerConfig PlayerConfigSource
	intercept    InterceptSource
	logger       *slog.Logger

	locale           string
	pollInterval     time.Duration
	pollAttempts     int
	interceptTimeout time.Duration

	mu   sync.Mutex
	memo map[string]*Transcript
}

// Option customizes the acquirer.
type Option func(*Acquirer)

// WithLocale sets the preferred caption-track locale for the player-config scan.
func WithLocale(locale string) Option {
	return func(a *Acquirer) {
		a.locale = strings.TrimSpace(locale)
	}
}

// WithPanelPolling overrides the panel poll cadence (useful for tests).
func WithPanelPolling(attempts int, interval time.Duration) Option {
	return func(a *Acquirer) {
		if attempts > 0 {
			a.pollAttempts = attempts
		}
		if interval > 0 {
			a.pollInterval = interval
		}
	}
}

// WithInterceptTimeout overrides how long the intercept wait blocks.
func WithInterceptTimeout(timeout time.Duration) Option {
	return func(a *Acquirer) {
		if timeout > 0 {
			a.interceptTimeout = timeout
		}
	}
}

// NewAcquirer constructs an acquirer over the given sources. Any source may
// be nil, in which case its strategy is skipped.
func NewAcquirer(panel PanelSource, playerConfig PlayerConfigSource, intercept InterceptSource, logger *slog.Logger, opts ...Option) *Acquirer {
	a := &Acquirer{
		panel:            panel,
		playerConfig:     playerConfig,
		intercept:        intercept,
		logger:           logging.NewComponentLogger(logger, "transcript-acquirer"),
		pollInterval:     defaultPanelPollInterval,
		pollAttempts:     defaultPanelPollAttempts,
		interceptTimeout: defaultInterceptTimeout,
		memo:             make(map[string]*Transcript),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire returns the transcript for videoID, trying each strategy in order.
// Total failure returns a NotAvailableError carrying the video ID.
func (a *Acquirer) Acquire(ctx context.Context, videoID, channelID string) (*Transcript, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, services.Wrap(services.ErrValidation, "transcript-acquirer", "acquire", "video id required", nil)
	}

	a.mu.Lock()
	if cached, ok := a.memo[videoID]; ok {
		a.mu.Unlock()
		return cached, nil
	}
	a.mu.Unlock()

	logger := logging.WithContext(ctx, a.logger).With(logging.String(logging.FieldVideoID, videoID))

	strategies := []struct {
		name string
		run  func(context.Context) ([]Entry, error)
	}{
		{"panel_scan", a.scanPanel},
		{"player_config_scan", a.scanPlayerConfig},
		{"network_intercept", a.waitForIntercept},
	}

	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := strategy.run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logger.Debug("extraction strategy failed; falling back",
				logging.String(logging.FieldStrategy, strategy.name),
				logging.Error(err))
			continue
		}
		if len(entries) == 0 {
			logger.Debug("extraction strategy produced no entries; falling back",
				logging.String(logging.FieldStrategy, strategy.name))
			continue
		}

		result := &Transcript{
			VideoID:   videoID,
			ChannelID: channelID,
			Entries:   entries,
			Text:      joinEntryText(entries),
		}
		a.mu.Lock()
		a.memo[videoID] = result
		a.mu.Unlock()

		logger.Info("transcript acquired",
			logging.String(logging.FieldStrategy, strategy.name),
			logging.Int("entry_count", len(entries)))
		return result, nil
	}

	return nil, &NotAvailableError{VideoID: videoID}
}

// scanPanel extracts entries from an already-open transcript panel, or opens
// it and polls until rows populate. Unpairable rows are skipped, not fatal.
func (a *Acquirer) scanPanel(ctx context.Context) ([]Entry, error) {
	if a.panel == nil {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "panel scan", "no panel source", nil)
	}

	if entries, err := a.collectPanelEntries(ctx); err == nil && len(entries) > 0 {
		return entries, nil
	}

	if err := a.panel.OpenPanel(ctx); err != nil {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "panel scan", "open transcript panel", err)
	}

	timer := time.NewTimer(a.pollInterval)
	defer timer.Stop()
	for attempt := 1; attempt <= a.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		entries, err := a.collectPanelEntries(ctx)
		if err != nil {
			return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "panel scan", "read panel entries", err)
		}
		if len(entries) > 0 {
			return entries, nil
		}
		timer.Reset(a.pollInterval)
	}

	return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "panel scan", "panel never populated", nil)
}

func (a *Acquirer) collectPanelEntries(ctx context.Context) ([]Entry, error) {
	rows, err := a.panel.Entries(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		offset, err := ParseTimestamp(row.Timestamp)
		if err != nil {
			// Rows that cannot be paired with a parsable timestamp are
			// skipped; they must not abort the scan.
			continue
		}
		text := strings.TrimSpace(row.Text)
		if text == "" {
			continue
		}
		entries = append(entries, Entry{Offset: offset, Text: text})
	}
	return entries, nil
}

// scanPlayerConfig discovers caption tracks from embedded player config. The
// platform blocks payload fetches from extension context, so in practice this
// confirms a transcript exists without being able to return its contents.
func (a *Acquirer) scanPlayerConfig(ctx context.Context) ([]Entry, error) {
	if a.playerConfig == nil {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "player config scan", "no player config source", nil)
	}

	tracks, err := a.playerConfig.Tracks(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "player config scan", "list caption tracks", err)
	}
	if len(tracks) == 0 {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "player config scan", "no caption tracks advertised", nil)
	}

	track := pickTrack(tracks, a.locale)
	a.logger.Debug("caption track discovered",
		logging.String("track_language", track.Language),
		logging.String("track_name", track.Name))

	content, err := a.playerConfig.FetchTrack(ctx, track)
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "player config scan", "fetch caption track", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "player config scan",
			fmt.Sprintf("track %q exists but payload was empty (platform blocks extension fetches)", track.Language), nil)
	}

	var payload CaptionPayload
	if err := decodeCaptionJSON(content, &payload); err != nil {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "player config scan", "decode caption payload", err)
	}
	return entriesFromPayload(&payload), nil
}

// waitForIntercept blocks until injected page code relays a caption payload
// or the wait times out.
func (a *Acquirer) waitForIntercept(ctx context.Context) ([]Entry, error) {
	if a.intercept == nil {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "network intercept", "no intercept source", nil)
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.interceptTimeout)
	defer cancel()

	payload, err := a.intercept.WaitForCaptions(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "network intercept", "no caption signal before timeout", nil)
		}
		return nil, err
	}
	if payload == nil || len(payload.Events) == 0 {
		return nil, services.Wrap(services.ErrExtraction, "transcript-acquirer", "network intercept", "empty caption payload", nil)
	}
	return entriesFromPayload(payload), nil
}

// pickTrack prefers the target locale, then English, then the first track.
func pickTrack(tracks []CaptionTrack, locale string) CaptionTrack {
	tags := make([]language.Tag, 0, len(tracks))
	for _, track := range tracks {
		tag, err := language.Parse(track.Language)
		if err != nil {
			tag = language.Und
		}
		tags = append(tags, tag)
	}
	matcher := language.NewMatcher(tags)

	for _, want := range []string{locale, "en"} {
		if strings.TrimSpace(want) == "" {
			continue
		}
		desired, err := language.Parse(want)
		if err != nil {
			continue
		}
		if _, index, confidence := matcher.Match(desired); confidence >= language.High {
			return tracks[index]
		}
	}
	return tracks[0]
}

func joinEntryText(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, entry.Text)
	}
	return strings.Join(parts, " ")
}
