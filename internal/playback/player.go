package playback

import "time"

// Player abstracts the host video element. Implementations bridge to the
// embedding surface (extension content script, test fake).
type Player interface {
	// CurrentTime reports the playhead position in seconds.
	CurrentTime() float64
	// SeekTo moves the playhead. Implementations must suppress the update
	// event a programmatic seek produces so a skip cannot retrigger itself.
	SeekTo(seconds float64) error
	// Updates emits playhead positions as playback progresses. The channel
	// closes when the underlying player goes away.
	Updates() <-chan float64
}

// PreviewNotifier receives skip-preview lifecycle events so a UI layer can
// show a cancellable countdown. Implementations must return quickly.
type PreviewNotifier interface {
	PreviewStarted(intervalID, category string, skipAt time.Time)
	PreviewEnded(intervalID string, skipped bool)
}

type nopNotifier struct{}

func (nopNotifier) PreviewStarted(string, string, time.Time) {}
func (nopNotifier) PreviewEnded(string, bool)                {}
