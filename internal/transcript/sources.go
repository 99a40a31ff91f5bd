package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// PanelEntry is one raw row scraped from an open transcript panel: a
// timestamp-like string paired with adjacent cue text.
type PanelEntry struct {
	Timestamp string
	Text      string
}

// PanelSource abstracts the structured-DOM extraction path: a transcript
// panel that may need to be opened and takes time to populate.
type PanelSource interface {
	// OpenPanel simulates activating the "show transcript" control. Calling
	// it when the panel is already open must be harmless.
	OpenPanel(ctx context.Context) error
	// Entries returns the currently rendered panel rows, which may be empty
	// while the panel is still populating.
	Entries(ctx context.Context) ([]PanelEntry, error)
}

// CaptionTrack describes one caption track advertised by the embedded player
// configuration.
type CaptionTrack struct {
	Language string // BCP 47 language tag, e.g. "en" or "pt-BR"
	Name     string
	URL      string
}

// PlayerConfigSource abstracts the embedded-player-config path. Track
// listings are reliable; fetching a track's payload from extension context is
// blocked by the platform and returns empty content, so this path serves as a
// transcript-exists diagnostic rather than a content source.
type PlayerConfigSource interface {
	Tracks(ctx context.Context) ([]CaptionTrack, error)
	FetchTrack(ctx context.Context, track CaptionTrack) (string, error)
}

// CaptionSeg is one text fragment inside a caption event.
type CaptionSeg struct {
	UTF8 string `json:"utf8"`
}

// CaptionEvent is one machine-readable caption cue from the intercepted
// network payload.
type CaptionEvent struct {
	StartMs    int64        `json:"tStartMs"`
	DurationMs int64        `json:"dDurationMs"`
	Segs       []CaptionSeg `json:"segs"`
}

// CaptionPayload is the intercepted caption response shape.
type CaptionPayload struct {
	Events []CaptionEvent `json:"events"`
}

// InterceptSource abstracts the network-intercept path: a side-channel signal
// delivered by injected page code carrying the raw caption payload.
type InterceptSource interface {
	// WaitForCaptions blocks until a payload arrives or ctx expires.
	WaitForCaptions(ctx context.Context) (*CaptionPayload, error)
}

// decodeCaptionJSON parses a raw caption payload document.
func decodeCaptionJSON(content string, payload *CaptionPayload) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty caption document")
	}
	return json.Unmarshal([]byte(trimmed), payload)
}

// entriesFromPayload converts intercepted caption events into timed entries,
// concatenating each event's text fragments and converting ms to seconds.
func entriesFromPayload(payload *CaptionPayload) []Entry {
	if payload == nil {
		return nil
	}
	entries := make([]Entry, 0, len(payload.Events))
	for _, event := range payload.Events {
		var sb strings.Builder
		for _, seg := range event.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Offset: float64(event.StartMs) / 1000.0,
			Text:   text,
		})
	}
	return entries
}
