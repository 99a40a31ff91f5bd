package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"skipper/internal/analysis"
	"skipper/internal/logging"
	"skipper/internal/services"
	"skipper/internal/transcript"
)

type analyzeCall struct {
	videoID string
	result  *analysis.Result
	err     error
}

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   []string
	results map[string]analyzeCall

	block   map[string]chan struct{}
	started chan string
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		results: make(map[string]analyzeCall),
		block:   make(map[string]chan struct{}),
	}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, videoID, _, _ string) (*analysis.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, videoID)
	gate := f.block[videoID]
	call := f.results[videoID]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- videoID
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call.err != nil {
		return nil, call.err
	}
	if call.result != nil {
		return call.result, nil
	}
	return &analysis.Result{VideoID: videoID}, nil
}

type fakeMonitor struct {
	mu       sync.Mutex
	attached []string
	detaches int
}

func (f *fakeMonitor) Attach(_ context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = append(f.attached, videoID)
	return nil
}

func (f *fakeMonitor) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detaches++
}

func (f *fakeMonitor) attachedVideos() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.attached...)
}

func TestHandleNewVideoAttachesMonitorOnSuccess(t *testing.T) {
	analyzer := newFakeAnalyzer()
	monitor := &fakeMonitor{}
	ready := make(chan string, 1)
	mgr := NewManager(analyzer, monitor, Callbacks{
		OnReady: func(videoID string, _ *analysis.Result) { ready <- videoID },
	}, logging.NewNop())
	defer mgr.Close()

	if err := mgr.HandleNewVideo(context.Background(), "dQw4w9WgXcQ", "UCchannel", "Test"); err != nil {
		t.Fatalf("HandleNewVideo returned error: %v", err)
	}

	select {
	case videoID := <-ready:
		if videoID != "dQw4w9WgXcQ" {
			t.Fatalf("ready for %q", videoID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnReady")
	}
	if got := monitor.attachedVideos(); len(got) != 1 || got[0] != "dQw4w9WgXcQ" {
		t.Fatalf("attached videos = %v", got)
	}
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	analyzer := newFakeAnalyzer()
	analyzer.started = make(chan string, 2)
	gate := make(chan struct{})
	analyzer.block["firstVideo1"] = gate

	monitor := &fakeMonitor{}
	ready := make(chan string, 2)
	mgr := NewManager(analyzer, monitor, Callbacks{
		OnReady: func(videoID string, _ *analysis.Result) { ready <- videoID },
	}, logging.NewNop())
	defer mgr.Close()

	ctx := context.Background()
	if err := mgr.HandleNewVideo(ctx, "firstVideo1", "UCchannel", ""); err != nil {
		t.Fatal(err)
	}
	<-analyzer.started

	// Navigate away while the first analysis is blocked.
	if err := mgr.HandleNewVideo(ctx, "secondVide1", "UCchannel", ""); err != nil {
		t.Fatal(err)
	}
	<-analyzer.started
	close(gate)

	select {
	case videoID := <-ready:
		if videoID != "secondVide1" {
			t.Fatalf("ready for %q, want secondVide1", videoID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnReady")
	}

	mgr.Close()
	for _, attached := range monitor.attachedVideos() {
		if attached == "firstVideo1" {
			t.Fatal("stale analysis attached the monitor")
		}
	}
}

// slowUnwindAnalyzer mimics the orchestrator's single-flight slot: one video
// blocks until its context is cancelled and then takes a while to unwind, and
// any overlapping call is reported as a collision.
type slowUnwindAnalyzer struct {
	blockID string
	unwind  time.Duration

	busy    atomic.Bool
	overlap atomic.Bool
}

func (f *slowUnwindAnalyzer) Analyze(ctx context.Context, videoID, _, _ string) (*analysis.Result, error) {
	if !f.busy.CompareAndSwap(false, true) {
		f.overlap.Store(true)
		return nil, analysis.ErrAnalysisInFlight
	}
	defer f.busy.Store(false)

	if videoID == f.blockID {
		<-ctx.Done()
		time.Sleep(f.unwind)
		return nil, ctx.Err()
	}
	return &analysis.Result{VideoID: videoID}, nil
}

func TestRapidNavigationAnalyzesLatestVideo(t *testing.T) {
	analyzer := &slowUnwindAnalyzer{blockID: "AAAAAAAAAAA", unwind: 30 * time.Millisecond}
	monitor := &fakeMonitor{}
	ready := make(chan string, 1)
	failed := make(chan string, 1)
	mgr := NewManager(analyzer, monitor, Callbacks{
		OnReady: func(videoID string, _ *analysis.Result) { ready <- videoID },
		OnError: func(videoID, message string) { failed <- videoID + ": " + message },
	}, logging.NewNop())
	defer mgr.Close()

	ctx := context.Background()
	if err := mgr.HandleNewVideo(ctx, "AAAAAAAAAAA", "UCchannel", ""); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := mgr.HandleNewVideo(ctx, "BBBBBBBBBBB", "UCchannel", ""); err != nil {
		t.Fatal(err)
	}

	select {
	case videoID := <-ready:
		if videoID != "BBBBBBBBBBB" {
			t.Fatalf("ready for %q, want BBBBBBBBBBB", videoID)
		}
	case failure := <-failed:
		t.Fatalf("analysis reported failure: %s", failure)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnReady")
	}
	if analyzer.overlap.Load() {
		t.Fatal("second analysis started before the first unwound")
	}
	if got := monitor.attachedVideos(); len(got) != 1 || got[0] != "BBBBBBBBBBB" {
		t.Fatalf("attached videos = %v", got)
	}
}

func TestAnalysisFailureSurfacesUserMessage(t *testing.T) {
	analyzer := newFakeAnalyzer()
	analyzer.results["dQw4w9WgXcQ"] = analyzeCall{
		err: &transcript.NotAvailableError{VideoID: "dQw4w9WgXcQ"},
	}
	monitor := &fakeMonitor{}
	failed := make(chan string, 1)
	mgr := NewManager(analyzer, monitor, Callbacks{
		OnError: func(_, message string) { failed <- message },
	}, logging.NewNop())
	defer mgr.Close()

	if err := mgr.HandleNewVideo(context.Background(), "dQw4w9WgXcQ", "UCchannel", ""); err != nil {
		t.Fatal(err)
	}

	select {
	case message := <-failed:
		if message != services.UserMessage(&transcript.NotAvailableError{VideoID: "dQw4w9WgXcQ"}) {
			t.Fatalf("unexpected user message %q", message)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnError")
	}
	if len(monitor.attachedVideos()) != 0 {
		t.Fatal("monitor attached despite failed analysis")
	}
}

func TestInvalidVideoIDRejectedSynchronously(t *testing.T) {
	mgr := NewManager(newFakeAnalyzer(), &fakeMonitor{}, Callbacks{}, logging.NewNop())
	defer mgr.Close()

	if err := mgr.HandleNewVideo(context.Background(), "nope", "UCchannel", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation marker", err)
	}
}
