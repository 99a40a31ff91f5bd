package analysis

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"skipper/internal/config"
	"skipper/internal/logging"
	"skipper/internal/segment"
	"skipper/internal/services"
	"skipper/internal/services/classifier"
	"skipper/internal/transcript"
)

// ErrAnalysisInFlight is returned when Analyze is called while a previous
// analysis is still running. Callers retry after the active run finishes.
var ErrAnalysisInFlight = errors.New("analysis already in flight")

// ErrChannelWhitelisted is returned when the video's channel is excluded
// from analysis by configuration.
var ErrChannelWhitelisted = errors.New("channel is whitelisted")

// TranscriptAcquirer yields a transcript for a video, trying whatever
// extraction strategies it has available.
type TranscriptAcquirer interface {
	Acquire(ctx context.Context, videoID, channelID string) (*transcript.Transcript, error)
}

// SegmentClassifier turns transcript lines into segment candidates.
type SegmentClassifier interface {
	ClassifySegments(ctx context.Context, req classifier.Request) ([]segment.Candidate, error)
	Model() string
}

// Orchestrator drives a full analysis run: whitelist check, cache lookup,
// transcript acquisition, classification, interval ingestion, cache write.
// Only one run executes at a time.
type Orchestrator struct {
	acquirer   TranscriptAcquirer
	classifier SegmentClassifier
	cache      *Cache
	set        *segment.Set
	cfg        *config.Config
	logger     *slog.Logger

	busy atomic.Bool
	now  func() time.Time
}

func NewOrchestrator(acquirer TranscriptAcquirer, cls SegmentClassifier, cache *Cache, set *segment.Set, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		acquirer:   acquirer,
		classifier: cls,
		cache:      cache,
		set:        set,
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "analysis"),
		now:        time.Now,
	}
}

// Set returns the interval set the orchestrator ingests results into.
func (o *Orchestrator) Set() *segment.Set {
	return o.set
}

// Analyze runs the pipeline for one video. A cache hit skips acquisition and
// classification entirely. Classifier failures propagate to the caller and
// are never cached; a later retry must reach the classifier again.
func (o *Orchestrator) Analyze(ctx context.Context, videoID, channelID, title string) (*Result, error) {
	if !transcript.ValidVideoID(videoID) {
		return nil, services.Wrap(services.ErrValidation, "analysis", "analyze", "invalid video id", nil)
	}
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrAnalysisInFlight
	}
	defer o.busy.Store(false)

	correlationID := uuid.NewString()
	ctx = services.WithRequestID(services.WithVideoID(ctx, videoID), correlationID)
	logger := o.logger.With(
		logging.String(logging.FieldVideoID, videoID),
		logging.String(logging.FieldCorrelationID, correlationID))

	if o.cfg.ChannelWhitelisted(channelID) {
		logger.Info("skipping analysis for whitelisted channel",
			logging.String(logging.FieldChannelID, channelID))
		return nil, ErrChannelWhitelisted
	}

	if cached, ok, err := o.cache.Get(ctx, videoID); err != nil {
		logging.WarnWithContext(logger, "cache lookup failed; analyzing fresh", "cache_read_failed",
			logging.String(logging.FieldErrorHint, "check cache database permissions"),
			logging.String(logging.FieldImpact, "one redundant classification"),
			logging.Error(err))
	} else if ok {
		logger.Info("analysis cache hit",
			logging.String(logging.FieldStage, "cache_check"),
			logging.Int("segment_count", len(cached.Segments)))
		o.set.Ingest(cached.Segments, o.cfg.Classifier.ConfidenceThreshold)
		return cached, nil
	}

	logger.Debug("analysis started", logging.String(logging.FieldStage, "acquire"))
	tr, err := o.acquirer.Acquire(ctx, videoID, channelID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		VideoID:          videoID,
		AnalyzedAt:       o.now().UTC(),
		Model:            o.classifier.Model(),
		TranscriptLength: tr.Length(),
	}

	categories := o.cfg.EnabledCategories()
	if len(categories) == 0 {
		logger.Info("no categories enabled; nothing to classify")
		o.set.Ingest(nil, o.cfg.Classifier.ConfidenceThreshold)
		return result, nil
	}

	logger.Debug("classifying transcript",
		logging.String(logging.FieldStage, "classify"),
		logging.Int("line_count", len(tr.Entries)))
	candidates, err := o.classifier.ClassifySegments(ctx, classifier.Request{
		TranscriptLines:     tr.PromptLines(),
		VideoTitle:          title,
		EnabledCategories:   categories,
		ConfidenceThreshold: o.cfg.Classifier.ConfidenceThreshold,
	})
	if err != nil {
		return nil, err
	}

	result.Segments = candidates
	o.set.Ingest(candidates, o.cfg.Classifier.ConfidenceThreshold)

	if err := o.cache.Put(ctx, result); err != nil {
		logging.WarnWithContext(logger, "cache write failed; analysis still usable", "cache_write_failed",
			logging.String(logging.FieldErrorHint, "check cache database permissions"),
			logging.String(logging.FieldImpact, "next visit re-analyzes this video"),
			logging.Error(err))
	}

	logger.Info("analysis complete",
		logging.String(logging.FieldStage, "done"),
		logging.Int("segment_count", len(candidates)),
		logging.Float64("classified_duration", result.TotalDuration()))
	return result, nil
}
