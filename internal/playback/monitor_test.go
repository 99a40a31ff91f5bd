package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skipper/internal/logging"
	"skipper/internal/segment"
	"skipper/internal/services"
)

type fakePlayer struct {
	mu      sync.Mutex
	current float64
	seeks   []float64
	seekErr error
	updates chan float64
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{updates: make(chan float64)}
}

func (p *fakePlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakePlayer) SeekTo(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seekErr != nil {
		return p.seekErr
	}
	p.current = seconds
	p.seeks = append(p.seeks, seconds)
	return nil
}

func (p *fakePlayer) Updates() <-chan float64 { return p.updates }

func (p *fakePlayer) setCurrent(t float64) {
	p.mu.Lock()
	p.current = t
	p.mu.Unlock()
}

func (p *fakePlayer) seekCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seeks)
}

func (p *fakePlayer) lastSeek() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.seeks) == 0 {
		return -1
	}
	return p.seeks[len(p.seeks)-1]
}

type skipRecord struct {
	videoID  string
	category segment.Category
	saved    float64
}

type fakeStats struct {
	mu      sync.Mutex
	records []skipRecord
}

func (s *fakeStats) RecordSkip(_ context.Context, videoID string, category segment.Category, saved float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, skipRecord{videoID, category, saved})
	return nil
}

func (s *fakeStats) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type previewEvent struct {
	id      string
	skipped bool
}

type fakeNotifier struct {
	mu      sync.Mutex
	started []string
	ended   []previewEvent
}

func (n *fakeNotifier) PreviewStarted(id, _ string, _ time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, id)
}

func (n *fakeNotifier) PreviewEnded(id string, skipped bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ended = append(n.ended, previewEvent{id, skipped})
}

func (n *fakeNotifier) snapshot() ([]string, []previewEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.started...), append([]previewEvent(nil), n.ended...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func sponsorSet(t *testing.T) *segment.Set {
	t.Helper()
	set := segment.NewSet(logging.NewNop())
	set.Ingest([]segment.Candidate{
		{Start: 15, End: 45, Category: "Sponsor", Confidence: 0.95, Description: "ad read"},
	}, 0.8)
	return set
}

func TestAutoSkipWithoutPreview(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	stats := &fakeStats{}
	mon := NewMonitor(set, player, stats, Settings{Buffer: 2, AutoSkip: true}, logging.NewNop())

	if err := mon.Attach(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatal(err)
	}
	defer mon.Detach()

	// Outside the lead buffer: 10.0 < 15 - 2.
	player.updates <- 10.0
	// Inside the lead buffer triggers an immediate seek to the segment end.
	player.updates <- 13.5

	waitFor(t, "seek", func() bool { return player.seekCount() == 1 })
	if got := player.lastSeek(); got != 45 {
		t.Fatalf("seeked to %v, want 45", got)
	}
	if set.Len() != 0 {
		t.Fatalf("consumed interval still present, set len %d", set.Len())
	}
	waitFor(t, "stat record", func() bool { return stats.count() == 1 })
}

func TestPreviewDelaysSkipUntilSegmentStart(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	notifier := &fakeNotifier{}
	mon := NewMonitor(set, player, &fakeStats{}, Settings{Buffer: 2, AutoSkip: true, EnablePreview: true},
		logging.NewNop(), WithNotifier(notifier))

	if err := mon.Attach(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatal(err)
	}
	defer mon.Detach()

	player.setCurrent(14.95)
	player.updates <- 14.95

	waitFor(t, "preview start", func() bool {
		started, _ := notifier.snapshot()
		return len(started) == 1
	})
	waitFor(t, "delayed seek", func() bool { return player.seekCount() == 1 })
	if got := player.lastSeek(); got != 45 {
		t.Fatalf("seeked to %v, want 45", got)
	}
	_, ended := notifier.snapshot()
	if len(ended) != 1 || !ended[0].skipped {
		t.Fatalf("preview end events = %v, want one skipped=true", ended)
	}
}

func TestSeekAwayDuringPreviewAbortsSkip(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	notifier := &fakeNotifier{}
	mon := NewMonitor(set, player, &fakeStats{}, Settings{Buffer: 2, AutoSkip: true, EnablePreview: true},
		logging.NewNop(), WithNotifier(notifier))

	if err := mon.Attach(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatal(err)
	}
	defer mon.Detach()

	player.setCurrent(14.0)
	player.updates <- 14.0

	waitFor(t, "preview start", func() bool {
		started, _ := notifier.snapshot()
		return len(started) == 1
	})

	// The user jumps well past the segment while the countdown runs.
	player.setCurrent(200)

	waitFor(t, "preview end", func() bool {
		_, ended := notifier.snapshot()
		return len(ended) == 1
	})
	if _, ended := notifier.snapshot(); ended[0].skipped {
		t.Fatalf("preview end events = %v, want skipped=false", ended)
	}
	if player.seekCount() != 0 {
		t.Fatalf("seek fired after the playhead left the segment, seeks=%v", player.seeks)
	}
	// The interval stays available for a later pass through the segment.
	if set.Len() != 1 {
		t.Fatalf("interval removed without a skip, set len %d", set.Len())
	}
}

func TestCancelPreviewPlaysSegmentThrough(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	notifier := &fakeNotifier{}
	mon := NewMonitor(set, player, &fakeStats{}, Settings{Buffer: 2, AutoSkip: true, EnablePreview: true},
		logging.NewNop(), WithNotifier(notifier))

	if err := mon.Attach(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatal(err)
	}
	defer mon.Detach()

	player.updates <- 13.2

	waitFor(t, "preview start", func() bool {
		started, _ := notifier.snapshot()
		return len(started) == 1
	})
	if !mon.CancelPreview() {
		t.Fatal("CancelPreview reported no pending preview")
	}
	if mon.CancelPreview() {
		t.Fatal("second CancelPreview should report nothing pending")
	}

	// Cancelling removes the interval, so it cannot retrigger.
	if set.Len() != 0 {
		t.Fatalf("cancelled interval still in set, len %d", set.Len())
	}
	player.updates <- 16.0
	time.Sleep(2100 * time.Millisecond)
	if player.seekCount() != 0 {
		t.Fatalf("seek happened after cancel, seeks=%v", player.seeks)
	}
	_, ended := notifier.snapshot()
	if len(ended) != 1 || ended[0].skipped {
		t.Fatalf("preview end events = %v, want one skipped=false", ended)
	}
}

func TestAutoSkipDisabledStaysPassive(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	mon := NewMonitor(set, player, &fakeStats{}, Settings{Buffer: 2}, logging.NewNop())

	if err := mon.Attach(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatal(err)
	}
	defer mon.Detach()

	player.updates <- 20.0
	player.updates <- 30.0
	if player.seekCount() != 0 {
		t.Fatalf("passive monitor seeked: %v", player.seeks)
	}
}

func TestManualSkipBypassesAutoSkipSetting(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	player.setCurrent(20.0)
	stats := &fakeStats{}
	mon := NewMonitor(set, player, stats, Settings{Buffer: 2}, logging.NewNop())

	iv, err := mon.ManualSkip()
	if err != nil {
		t.Fatalf("ManualSkip returned error: %v", err)
	}
	if iv.Category != segment.CategorySponsor {
		t.Fatalf("skipped category = %v", iv.Category)
	}
	if got := player.lastSeek(); got != 45 {
		t.Fatalf("seeked to %v, want 45", got)
	}
	waitFor(t, "stat record", func() bool { return stats.count() == 1 })
}

func TestManualSkipWithNoActiveSegment(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	player.setCurrent(100.0)
	mon := NewMonitor(set, player, &fakeStats{}, Settings{Buffer: 2}, logging.NewNop())

	if _, err := mon.ManualSkip(); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want not-found marker", err)
	}
}

func TestSeekFailureLeavesSegmentInPlace(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	player.seekErr = errors.New("player detached from page")
	mon := NewMonitor(set, player, &fakeStats{}, Settings{Buffer: 2, AutoSkip: true}, logging.NewNop())

	if err := mon.Attach(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatal(err)
	}
	player.updates <- 16.0
	mon.Detach()

	if set.Len() != 1 {
		t.Fatalf("interval removed despite failed seek, set len %d", set.Len())
	}
}

func TestDetachStopsConsumingUpdates(t *testing.T) {
	set := sponsorSet(t)
	player := newFakePlayer()
	mon := NewMonitor(set, player, &fakeStats{}, Settings{Buffer: 2, AutoSkip: true}, logging.NewNop())

	if err := mon.Attach(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatal(err)
	}
	mon.Detach()

	select {
	case player.updates <- 16.0:
		t.Fatal("detached monitor still consuming updates")
	case <-time.After(50 * time.Millisecond):
	}
	if err := mon.Attach(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("re-attach after detach failed: %v", err)
	}
	mon.Detach()
}
