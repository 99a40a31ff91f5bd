package segment

import (
	"log/slog"
	"sort"
	"sync"

	"skipper/internal/logging"
)

// Candidate is the raw classifier output shape before validation.
type Candidate struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// Set maintains the always-sorted, always-non-overlapping collection of
// intervals for the currently playing video. Ingest rebuilds the list off to
// the side and swaps it in under the lock, so a concurrent monitor tick sees
// either the old complete list or the new one, never a partial state.
type Set struct {
	logger *slog.Logger

	mu        sync.RWMutex
	intervals []Interval
}

// NewSet constructs an empty set.
func NewSet(logger *slog.Logger) *Set {
	return &Set{logger: logging.NewComponentLogger(logger, "segment-set")}
}

// Ingest validates, filters, sorts, and merges raw candidates, then replaces
// the set's contents with the result. A malformed candidate is dropped and
// logged rather than aborting the batch; one bad entry must not discard an
// otherwise-good classifier response.
func (s *Set) Ingest(candidates []Candidate, confidenceThreshold float64) {
	accepted := make([]Interval, 0, len(candidates))
	for _, cand := range candidates {
		category, err := ParseCategory(cand.Category)
		if err != nil {
			s.logger.Debug("dropping candidate with unusable category",
				logging.String(logging.FieldCategory, cand.Category),
				logging.Error(err))
			continue
		}
		iv, err := New(cand.Start, cand.End, category, cand.Description, clampConfidence(cand.Confidence))
		if err != nil {
			s.logger.Debug("dropping invalid candidate",
				logging.Float64("start", cand.Start),
				logging.Float64("end", cand.End),
				logging.Error(err))
			continue
		}
		if iv.Confidence < confidenceThreshold {
			s.logger.Debug("dropping low-confidence candidate",
				logging.String(logging.FieldCategory, string(iv.Category)),
				logging.Float64("confidence", iv.Confidence),
				logging.Float64("threshold", confidenceThreshold))
			continue
		}
		accepted = append(accepted, iv)
	}

	merged := mergeIntervals(accepted)

	s.mu.Lock()
	s.intervals = merged
	s.mu.Unlock()
}

// mergeIntervals sorts ascending by start, ties broken by longer duration
// first so the longer covering interval seeds each merge run, then collapses
// overlapping neighbors in a single pass. Output is deterministic for any
// input order.
func mergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := append([]Interval(nil), intervals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Duration() > sorted[j].Duration()
	})

	out := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if current.Overlaps(next) {
			current = current.Merge(next)
			continue
		}
		out = append(out, current)
		current = next
	}
	out = append(out, current)
	return out
}

// FindActiveAt returns the first interval containing t with the given lead
// buffer. Because the set is non-overlapping, the first match is the only
// match. A linear scan is deliberate: the set holds tens of entries at most.
func (s *Set) FindActiveAt(t, buffer float64) (Interval, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, iv := range s.intervals {
		if iv.Contains(t, buffer) {
			return iv, true
		}
	}
	return Interval{}, false
}

// Get returns the interval with the given ID, if still present.
func (s *Set) Get(id string) (Interval, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, iv := range s.intervals {
		if iv.ID == id {
			return iv, true
		}
	}
	return Interval{}, false
}

// RemoveConsumed drops every interval whose end is at or behind upTo. A
// skipped interval cannot re-trigger once playback has passed it, and
// adjacent small intervals behind the new position go with it.
func (s *Set) RemoveConsumed(upTo float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.intervals[:0]
	for _, iv := range s.intervals {
		if iv.End > upTo {
			kept = append(kept, iv)
		}
	}
	s.intervals = kept
}

// Remove deletes exactly one interval by identity. Used when the user cancels
// a pending preview; the interval stays gone for the rest of the session.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, iv := range s.intervals {
		if iv.ID == id {
			s.intervals = append(s.intervals[:i], s.intervals[i+1:]...)
			return true
		}
	}
	return false
}

// Intervals returns a copy of the current contents in ascending start order.
func (s *Set) Intervals() []Interval {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Interval(nil), s.intervals...)
}

// Len returns the number of intervals currently held.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.intervals)
}

// TotalDuration returns the summed length of all held intervals in seconds.
func (s *Set) TotalDuration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, iv := range s.intervals {
		total += iv.Duration()
	}
	return total
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
