package transcript

import (
	"context"
	"errors"
	"testing"
	"time"

	"skipper/internal/services"
)

type fakePanel struct {
	openErr      error
	opened       bool
	entriesAfter int // number of Entries calls before rows appear
	calls        int
	rows         []PanelEntry
	err          error
}

func (f *fakePanel) OpenPanel(ctx context.Context) error {
	f.opened = true
	return f.openErr
}

func (f *fakePanel) Entries(ctx context.Context) ([]PanelEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	if f.calls <= f.entriesAfter {
		return nil, nil
	}
	return f.rows, nil
}

type fakePlayerConfig struct {
	tracks       []CaptionTrack
	tracksErr    error
	content      map[string]string
	fetchedTrack CaptionTrack
}

func (f *fakePlayerConfig) Tracks(ctx context.Context) ([]CaptionTrack, error) {
	return f.tracks, f.tracksErr
}

func (f *fakePlayerConfig) FetchTrack(ctx context.Context, track CaptionTrack) (string, error) {
	f.fetchedTrack = track
	return f.content[track.Language], nil
}

type fakeIntercept struct {
	payload *CaptionPayload
	after   time.Duration
}

func (f *fakeIntercept) WaitForCaptions(ctx context.Context) (*CaptionPayload, error) {
	if f.payload == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.after > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.after):
		}
	}
	return f.payload, nil
}

func testOptions() []Option {
	return []Option{
		WithPanelPolling(3, 5*time.Millisecond),
		WithInterceptTimeout(100 * time.Millisecond),
	}
}

func TestAcquireFromOpenPanel(t *testing.T) {
	panel := &fakePanel{rows: []PanelEntry{
		{Timestamp: "0:05", Text: "intro words"},
		{Timestamp: "1:30", Text: "sponsor words"},
	}}
	acquirer := NewAcquirer(panel, nil, nil, nil, testOptions()...)

	tr, err := acquirer.Acquire(context.Background(), "dQw4w9WgXcQ", "chan1")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if len(tr.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(tr.Entries))
	}
	if tr.Entries[1].Offset != 90 {
		t.Errorf("second entry offset = %.1f, want 90", tr.Entries[1].Offset)
	}
	if panel.opened {
		t.Error("panel was already populated; OpenPanel should not have been needed")
	}
}

func TestAcquirePanelPollsUntilPopulated(t *testing.T) {
	panel := &fakePanel{
		entriesAfter: 2,
		rows:         []PanelEntry{{Timestamp: "0:10", Text: "late rows"}},
	}
	acquirer := NewAcquirer(panel, nil, nil, nil, testOptions()...)

	tr, err := acquirer.Acquire(context.Background(), "dQw4w9WgXcQ", "chan1")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !panel.opened {
		t.Error("acquirer should have triggered the panel open control")
	}
	if len(tr.Entries) != 1 {
		t.Errorf("got %d entries, want 1", len(tr.Entries))
	}
}

func TestAcquireSkipsUnpairablePanelRows(t *testing.T) {
	panel := &fakePanel{rows: []PanelEntry{
		{Timestamp: "garbage", Text: "dropped"},
		{Timestamp: "0:20", Text: ""},
		{Timestamp: "0:30", Text: "kept"},
	}}
	acquirer := NewAcquirer(panel, nil, nil, nil, testOptions()...)

	tr, err := acquirer.Acquire(context.Background(), "dQw4w9WgXcQ", "chan1")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if len(tr.Entries) != 1 || tr.Entries[0].Text != "kept" {
		t.Errorf("unpairable rows must be skipped, got %+v", tr.Entries)
	}
}

func TestAcquireFallsBackToIntercept(t *testing.T) {
	panel := &fakePanel{err: errors.New("panel gone")}
	intercept := &fakeIntercept{
		after: 20 * time.Millisecond,
		payload: &CaptionPayload{Events: []CaptionEvent{
			{StartMs: 3000, Segs: []CaptionSeg{{UTF8: "intercepted"}}},
		}},
	}
	acquirer := NewAcquirer(panel, nil, intercept, nil, testOptions()...)

	start := time.Now()
	tr, err := acquirer.Acquire(context.Background(), "dQw4w9WgXcQ", "chan1")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if tr.Entries[0].Offset != 3.0 || tr.Entries[0].Text != "intercepted" {
		t.Errorf("unexpected intercepted entry %+v", tr.Entries[0])
	}
	// Wall time is the panel attempt plus the intercept delivery delay, not
	// the full intercept timeout.
	if elapsed := time.Since(start); elapsed > 90*time.Millisecond {
		t.Errorf("acquisition took %v; should not have waited out the intercept timeout", elapsed)
	}
}

func TestAcquirePlayerConfigIsDiagnosticOnly(t *testing.T) {
	panel := &fakePanel{err: errors.New("no panel")}
	playerConfig := &fakePlayerConfig{
		tracks: []CaptionTrack{
			{Language: "de", Name: "German"},
			{Language: "en", Name: "English"},
		},
		content: map[string]string{}, // platform returns empty payloads
	}
	intercept := &fakeIntercept{payload: &CaptionPayload{Events: []CaptionEvent{
		{StartMs: 0, Segs: []CaptionSeg{{UTF8: "from intercept"}}},
	}}}
	acquirer := NewAcquirer(panel, playerConfig, intercept, nil, testOptions()...)

	tr, err := acquirer.Acquire(context.Background(), "dQw4w9WgXcQ", "chan1")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if tr.Entries[0].Text != "from intercept" {
		t.Errorf("empty track payload must fall through to intercept, got %+v", tr.Entries[0])
	}
	if playerConfig.fetchedTrack.Language != "en" {
		t.Errorf("fetched track language = %q, want English preference", playerConfig.fetchedTrack.Language)
	}
}

func TestAcquireAllStrategiesFail(t *testing.T) {
	panel := &fakePanel{}         // never populates
	intercept := &fakeIntercept{} // never signals
	acquirer := NewAcquirer(panel, nil, intercept, nil, testOptions()...)

	_, err := acquirer.Acquire(context.Background(), "dQw4w9WgXcQ", "chan1")
	if err == nil {
		t.Fatal("expected failure when every strategy is exhausted")
	}
	if !errors.Is(err, services.ErrTranscriptUnavailable) {
		t.Errorf("error should wrap ErrTranscriptUnavailable, got %v", err)
	}
	var notAvailable *NotAvailableError
	if !errors.As(err, &notAvailable) || notAvailable.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("error should carry the video id, got %v", err)
	}
}

func TestAcquireMemoizesPerVideo(t *testing.T) {
	panel := &fakePanel{rows: []PanelEntry{{Timestamp: "0:01", Text: "once"}}}
	acquirer := NewAcquirer(panel, nil, nil, nil, testOptions()...)

	first, err := acquirer.Acquire(context.Background(), "dQw4w9WgXcQ", "chan1")
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	callsAfterFirst := panel.calls

	second, err := acquirer.Acquire(context.Background(), "dQw4w9WgXcQ", "chan1")
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if panel.calls != callsAfterFirst {
		t.Error("repeat acquisition must not rescan the panel")
	}
	if first != second {
		t.Error("memoized transcript should be the same instance")
	}
}

func TestPickTrackLocalePreference(t *testing.T) {
	tracks := []CaptionTrack{
		{Language: "pt-BR"},
		{Language: "en"},
		{Language: "ja"},
	}

	if got := pickTrack(tracks, "pt-BR"); got.Language != "pt-BR" {
		t.Errorf("target locale should win, got %q", got.Language)
	}
	if got := pickTrack(tracks, "fr"); got.Language != "en" {
		t.Errorf("English fallback should win, got %q", got.Language)
	}

	noEnglish := []CaptionTrack{{Language: "ja"}, {Language: "ko"}}
	if got := pickTrack(noEnglish, "fr"); got.Language != "ja" {
		t.Errorf("first track fallback should win, got %q", got.Language)
	}
}
