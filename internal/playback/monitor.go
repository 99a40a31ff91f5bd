package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"skipper/internal/logging"
	"skipper/internal/segment"
	"skipper/internal/services"
)

// StatsRecorder persists a completed skip. Recording happens off the skip
// path; a storage failure never blocks or undoes a seek.
type StatsRecorder interface {
	RecordSkip(ctx context.Context, videoID string, category segment.Category, secondsSaved float64) error
}

// Settings are the playback-facing knobs lifted from configuration.
type Settings struct {
	// Buffer is the lead time in seconds. Skips trigger this early so the
	// seek completes before the segment content is visible.
	Buffer float64
	// EnablePreview shows a cancellable countdown instead of seeking
	// immediately when the lead buffer is entered.
	EnablePreview bool
	// AutoSkip enables automatic skipping. When false the monitor stays
	// passive and only ManualSkip acts.
	AutoSkip bool
}

type pendingPreview struct {
	intervalID string
	timer      *time.Timer
}

// Monitor watches playhead updates and executes skips against the interval
// set. One monitor serves one video at a time.
type Monitor struct {
	set      *segment.Set
	player   Player
	stats    StatsRecorder
	notifier PreviewNotifier
	settings Settings
	logger   *slog.Logger

	mu       sync.Mutex
	attached bool
	videoID  string
	cancel   context.CancelFunc
	pending  *pendingPreview
	wg       sync.WaitGroup
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithNotifier installs a preview notifier. Without one, previews still
// delay the seek but nothing is displayed.
func WithNotifier(n PreviewNotifier) Option {
	return func(m *Monitor) {
		if n != nil {
			m.notifier = n
		}
	}
}

func NewMonitor(set *segment.Set, player Player, stats StatsRecorder, settings Settings, logger *slog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		set:      set,
		player:   player,
		stats:    stats,
		notifier: nopNotifier{},
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "playback-monitor"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach starts consuming playhead updates for videoID.
func (m *Monitor) Attach(ctx context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached {
		return services.Wrap(services.ErrValidation, "playback-monitor", "attach", "monitor already attached", nil)
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.attached = true
	m.videoID = videoID
	m.cancel = cancel
	m.wg.Add(1)
	go m.run(runCtx)
	return nil
}

// Detach stops the monitor and cancels any pending preview without seeking.
func (m *Monitor) Detach() {
	m.mu.Lock()
	if !m.attached {
		m.mu.Unlock()
		return
	}
	m.attached = false
	m.cancel()
	if m.pending != nil {
		m.pending.timer.Stop()
		m.pending = nil
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()
	updates := m.player.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-updates:
			if !ok {
				return
			}
			m.handleTick(t)
		}
	}
}

// handleTick runs synchronously on the update goroutine. At most one preview
// is pending at a time; while one is, further triggers are suppressed.
func (m *Monitor) handleTick(t float64) {
	if !m.settings.AutoSkip {
		return
	}
	m.mu.Lock()
	if m.pending != nil {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	iv, ok := m.set.FindActiveAt(t, m.settings.Buffer)
	if !ok {
		return
	}

	if !m.settings.EnablePreview {
		m.performSkip(iv, false)
		return
	}

	// The countdown runs until the segment actually starts, so the seek
	// lands exactly when the lead buffer was meant to hide.
	delay := time.Duration((iv.Start - t) * float64(time.Second))
	if delay <= 0 {
		m.performSkip(iv, false)
		return
	}
	m.schedulePreview(iv, delay)
}

func (m *Monitor) schedulePreview(iv segment.Interval, delay time.Duration) {
	m.mu.Lock()
	if !m.attached || m.pending != nil {
		m.mu.Unlock()
		return
	}
	pending := &pendingPreview{intervalID: iv.ID}
	pending.timer = time.AfterFunc(delay, func() { m.previewFired(pending) })
	m.pending = pending
	videoID := m.videoID
	m.mu.Unlock()

	m.notifier.PreviewStarted(iv.ID, string(iv.Category), time.Now().Add(delay))
	m.logger.Debug("skip preview started",
		logging.String(logging.FieldVideoID, videoID),
		logging.String(logging.FieldCategory, string(iv.Category)),
		logging.Duration("countdown", delay))
}

func (m *Monitor) previewFired(pending *pendingPreview) {
	m.mu.Lock()
	if !m.attached || m.pending != pending {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	m.mu.Unlock()

	// Re-resolve by identity: a cancel or re-ingest since scheduling wins.
	iv, ok := m.set.Get(pending.intervalID)
	if !ok {
		m.notifier.PreviewEnded(pending.intervalID, false)
		return
	}
	// A user seek during the countdown wins too. The interval stays in the
	// set so it can trigger again if playback returns to it.
	if !iv.Contains(m.player.CurrentTime(), m.settings.Buffer) {
		m.notifier.PreviewEnded(pending.intervalID, false)
		return
	}
	m.notifier.PreviewEnded(pending.intervalID, true)
	m.performSkip(iv, false)
}

// CancelPreview aborts a pending preview and removes its interval so the
// segment plays through without retriggering. Reports whether one existed.
func (m *Monitor) CancelPreview() bool {
	m.mu.Lock()
	pending := m.pending
	if pending == nil {
		m.mu.Unlock()
		return false
	}
	pending.timer.Stop()
	m.pending = nil
	videoID := m.videoID
	m.mu.Unlock()

	m.set.Remove(pending.intervalID)
	m.notifier.PreviewEnded(pending.intervalID, false)
	m.logger.Info("skip preview cancelled",
		logging.String(logging.FieldVideoID, videoID))
	return true
}

// ManualSkip skips the segment active at the current playhead regardless of
// the auto-skip and preview settings.
func (m *Monitor) ManualSkip() (segment.Interval, error) {
	iv, ok := m.set.FindActiveAt(m.player.CurrentTime(), m.settings.Buffer)
	if !ok {
		return segment.Interval{}, services.Wrap(services.ErrNotFound, "playback-monitor", "manual_skip", "no segment at current position", nil)
	}

	m.mu.Lock()
	if m.pending != nil && m.pending.intervalID == iv.ID {
		m.pending.timer.Stop()
		m.pending = nil
		m.mu.Unlock()
		m.notifier.PreviewEnded(iv.ID, true)
	} else {
		m.mu.Unlock()
	}

	if err := m.performSkip(iv, true); err != nil {
		return segment.Interval{}, err
	}
	return iv, nil
}

func (m *Monitor) performSkip(iv segment.Interval, manual bool) error {
	if err := m.player.SeekTo(iv.End); err != nil {
		logging.WarnWithContext(m.logger, "seek failed; segment left in place", "seek_failed",
			logging.String(logging.FieldErrorHint, "player may have been removed from the page"),
			logging.String(logging.FieldImpact, "segment will retrigger on the next update"),
			logging.Error(err))
		return services.Wrap(services.ErrExtraction, "playback-monitor", "skip", "seek player", err)
	}

	m.set.RemoveConsumed(iv.End)

	m.mu.Lock()
	videoID := m.videoID
	m.mu.Unlock()

	saved := iv.End - iv.Start
	m.logger.Info("segment skipped",
		logging.String(logging.FieldVideoID, videoID),
		logging.String(logging.FieldCategory, string(iv.Category)),
		logging.Float64("seconds_saved", saved),
		logging.Bool("manual", manual))

	if m.stats != nil {
		// Fire and forget: recording must never delay or fail a skip.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.stats.RecordSkip(ctx, videoID, iv.Category, saved); err != nil {
				m.logger.Warn("skip stat not recorded", logging.Error(err))
			}
		}()
	}
	return nil
}
