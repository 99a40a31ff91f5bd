package transcript

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"skipper/internal/services"
)

// Entry is one timed transcript cue.
type Entry struct {
	Offset float64 // seconds from video start
	Text   string
}

// Transcript is the spoken text of one video, captured once per viewing
// session by whichever extraction strategy succeeds first.
type Transcript struct {
	VideoID   string
	ChannelID string
	Text      string
	Entries   []Entry
}

// videoIDLength is the fixed length of platform video identifiers.
const videoIDLength = 11

// ValidVideoID reports whether id has the expected opaque 11-character shape.
func ValidVideoID(id string) bool {
	return len(strings.TrimSpace(id)) == videoIDLength
}

// SortedEntries returns the entries ordered by offset. Panel-extracted
// entries are assumed chronological but the source never guarantees it, so
// downstream formatting sorts defensively.
func (t *Transcript) SortedEntries() []Entry {
	entries := append([]Entry(nil), t.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Offset < entries[j].Offset
	})
	return entries
}

// PromptLines renders the transcript as "[Ns] text" lines for the classifier
// request. Offsets are floored to whole seconds; the classifier only needs
// second-level cue timing.
func (t *Transcript) PromptLines() []string {
	entries := t.SortedEntries()
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%ds] %s", int(math.Floor(entry.Offset)), text))
	}
	return lines
}

// Length returns the character count of the full transcript text, falling
// back to the summed entry text when Text is unset.
func (t *Transcript) Length() int {
	if t.Text != "" {
		return len(t.Text)
	}
	total := 0
	for _, entry := range t.Entries {
		total += len(entry.Text)
	}
	return total
}

// ParseTimestamp converts a panel timestamp of the form "M:SS" or "H:MM:SS"
// into seconds.
func ParseTimestamp(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, services.Wrap(services.ErrValidation, "transcript", "parse timestamp", "empty timestamp", nil)
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, services.Wrap(services.ErrValidation, "transcript", "parse timestamp", fmt.Sprintf("unrecognized timestamp %q", raw), nil)
	}

	var total float64
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || value < 0 {
			return 0, services.Wrap(services.ErrValidation, "transcript", "parse timestamp", fmt.Sprintf("unrecognized timestamp %q", raw), err)
		}
		total = total*60 + float64(value)
	}
	return total, nil
}
