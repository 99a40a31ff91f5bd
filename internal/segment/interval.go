package segment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"skipper/internal/services"
)

// Interval is a validated half-open [Start,End) time range, in seconds, that
// playback should skip over. IDs make identity removal exact after a
// preview cancel.
type Interval struct {
	ID          string
	Start       float64
	End         float64
	Category    Category
	Description string
	Confidence  float64
}

// New validates and constructs an interval.
func New(start, end float64, category Category, description string, confidence float64) (Interval, error) {
	if start < 0 {
		return Interval{}, services.Wrap(services.ErrValidation, "segment", "new interval", fmt.Sprintf("start %.3f is negative", start), nil)
	}
	if end <= start {
		return Interval{}, services.Wrap(services.ErrValidation, "segment", "new interval", fmt.Sprintf("end %.3f must exceed start %.3f", end, start), nil)
	}
	if !category.Valid() {
		return Interval{}, services.Wrap(services.ErrValidation, "segment", "new interval", fmt.Sprintf("invalid category %q", string(category)), nil)
	}
	if confidence < 0 || confidence > 1 {
		return Interval{}, services.Wrap(services.ErrValidation, "segment", "new interval", fmt.Sprintf("confidence %.3f outside [0,1]", confidence), nil)
	}
	return Interval{
		ID:          uuid.NewString(),
		Start:       start,
		End:         end,
		Category:    category,
		Description: strings.TrimSpace(description),
		Confidence:  confidence,
	}, nil
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Contains reports whether t falls inside the interval, widened at the front
// by buffer seconds so a skip can fire slightly early to hide seek latency.
func (iv Interval) Contains(t, buffer float64) bool {
	return t >= iv.Start-buffer && t < iv.End
}

// Overlaps uses the half-open overlap test. Touching endpoints do not count:
// an interval ending exactly where another starts does not overlap it.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Merge returns a new interval spanning both inputs. The category stays
// unchanged when identical, else becomes a composite label; descriptions are
// joined with " | " (empty parts dropped); confidence is the minimum of the
// two, since the merged interval is only as trustworthy as its weakest input.
func (iv Interval) Merge(other Interval) Interval {
	start := iv.Start
	if other.Start < start {
		start = other.Start
	}
	end := iv.End
	if other.End > end {
		end = other.End
	}
	confidence := iv.Confidence
	if other.Confidence < confidence {
		confidence = other.Confidence
	}
	return Interval{
		ID:          uuid.NewString(),
		Start:       start,
		End:         end,
		Category:    MergeCategories(iv.Category, other.Category),
		Description: joinDescriptions(iv.Description, other.Description),
		Confidence:  confidence,
	}
}

func joinDescriptions(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " | " + b
	}
}
