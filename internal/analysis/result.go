package analysis

import (
	"time"

	"skipper/internal/segment"
)

// Result is one completed analysis of a video. Segments carry the exact
// candidate shape the classifier produced so a cache round trip feeds
// segment.Set.Ingest the same bytes a fresh classification would.
type Result struct {
	VideoID          string              `json:"video_id"`
	Segments         []segment.Candidate `json:"segments"`
	AnalyzedAt       time.Time           `json:"analyzed_at"`
	Model            string              `json:"model"`
	TranscriptLength int                 `json:"transcript_length"`
}

// TotalDuration sums the spans of all classified segments in seconds.
func (r *Result) TotalDuration() float64 {
	var total float64
	for _, seg := range r.Segments {
		if seg.End > seg.Start {
			total += seg.End - seg.Start
		}
	}
	return total
}
