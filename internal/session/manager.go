package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"skipper/internal/analysis"
	"skipper/internal/logging"
	"skipper/internal/services"
	"skipper/internal/transcript"
)

// Analyzer runs the classification pipeline for one video.
type Analyzer interface {
	Analyze(ctx context.Context, videoID, channelID, title string) (*analysis.Result, error)
}

// MonitorController attaches and detaches the playback monitor.
type MonitorController interface {
	Attach(ctx context.Context, videoID string) error
	Detach()
}

// Callbacks surface session outcomes to the embedding UI. Both are optional
// and invoked from the analysis goroutine.
type Callbacks struct {
	// OnReady fires when analysis finished and the monitor is attached.
	OnReady func(videoID string, result *analysis.Result)
	// OnError fires with a user-presentable message when analysis failed.
	OnError func(videoID string, message string)
}

// Manager serializes video navigation: each new video cancels the previous
// video's analysis, drains its goroutine, and detaches its monitor before
// starting fresh. Draining matters twice over: the analyzer's single-flight
// slot is only free once the old call has unwound, and a goroutine that is
// fully gone cannot attach a stale monitor after the new video's Detach.
type Manager struct {
	analyzer Analyzer
	monitor  MonitorController
	cb       Callbacks
	logger   *slog.Logger

	// navMu serializes navigation events themselves.
	navMu sync.Mutex

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewManager(analyzer Analyzer, monitor MonitorController, cb Callbacks, logger *slog.Logger) *Manager {
	return &Manager{
		analyzer: analyzer,
		monitor:  monitor,
		cb:       cb,
		logger:   logging.NewComponentLogger(logger, "session"),
	}
}

// HandleNewVideo reacts to a navigation event. It returns after handing the
// analysis to a background goroutine; outcomes arrive via Callbacks. The
// previous video's run is cancelled and fully drained first so the new
// analysis never collides with the old one's unwind.
func (m *Manager) HandleNewVideo(ctx context.Context, videoID, channelID, title string) error {
	if !transcript.ValidVideoID(videoID) {
		return services.Wrap(services.ErrValidation, "session", "handle new video", "invalid video id", nil)
	}

	m.navMu.Lock()
	defer m.navMu.Unlock()

	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	runDone := make(chan struct{})
	m.mu.Lock()
	m.current = videoID
	m.cancel = cancelRun
	m.done = runDone
	m.mu.Unlock()

	m.monitor.Detach()

	m.logger.Info("video session started",
		logging.String(logging.FieldVideoID, videoID),
		logging.String(logging.FieldChannelID, channelID))

	m.wg.Add(1)
	go func() {
		defer close(runDone)
		m.runAnalysis(runCtx, videoID, channelID, title)
	}()
	return nil
}

func (m *Manager) runAnalysis(ctx context.Context, videoID, channelID, title string) {
	defer m.wg.Done()

	result, err := m.analyzer.Analyze(ctx, videoID, channelID, title)

	m.mu.Lock()
	stale := m.current != videoID
	m.mu.Unlock()
	if stale {
		m.logger.Debug("discarding stale analysis completion",
			logging.String(logging.FieldVideoID, videoID))
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, analysis.ErrChannelWhitelisted) {
			return
		}
		message := services.UserMessage(err)
		m.logger.Warn("analysis failed",
			logging.String(logging.FieldVideoID, videoID),
			logging.Error(err))
		if m.cb.OnError != nil {
			m.cb.OnError(videoID, message)
		}
		return
	}

	if err := m.monitor.Attach(ctx, videoID); err != nil {
		m.logger.Warn("monitor attach failed",
			logging.String(logging.FieldVideoID, videoID),
			logging.Error(err))
		return
	}
	if m.cb.OnReady != nil {
		m.cb.OnReady(videoID, result)
	}
}

// Close ends the active session and waits for in-flight work to drain.
func (m *Manager) Close() {
	m.navMu.Lock()
	defer m.navMu.Unlock()

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.current = ""
	m.mu.Unlock()

	m.monitor.Detach()
	m.wg.Wait()
}
