package classifier

import (
	"context"
	"fmt"
	"strings"

	"skipper/internal/segment"
	"skipper/internal/services"
)

// Request carries everything the classifier needs for one video.
type Request struct {
	TranscriptLines     []string
	VideoTitle          string
	EnabledCategories   []segment.Category
	ConfidenceThreshold float64
}

type segmentsEnvelope struct {
	Segments []rawSegment `json:"segments"`
}

type rawSegment struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// ClassifySegments sends the transcript to the model and returns the raw
// candidate intervals. The response contract is advisory; callers must
// re-validate and re-filter by confidence.
func (c *Client) ClassifySegments(ctx context.Context, req Request) ([]segment.Candidate, error) {
	if len(req.TranscriptLines) == 0 {
		return nil, services.Wrap(services.ErrClassifier, "classifier", "classify segments", "transcript lines required", nil)
	}
	if len(req.EnabledCategories) == 0 {
		return nil, services.Wrap(services.ErrClassifier, "classifier", "classify segments", "no categories enabled", nil)
	}

	content, err := c.CompleteJSON(ctx, SegmentClassificationPrompt, buildUserPrompt(req))
	if err != nil {
		return nil, services.Wrap(services.ErrClassifier, "classifier", "classify segments", "completion failed", err)
	}

	var envelope segmentsEnvelope
	if err := DecodeModelJSON(content, &envelope); err != nil {
		return nil, services.Wrap(services.ErrClassifier, "classifier", "classify segments", "parse payload", err)
	}

	candidates := make([]segment.Candidate, 0, len(envelope.Segments))
	for _, raw := range envelope.Segments {
		candidates = append(candidates, segment.Candidate{
			Start:       raw.Start,
			End:         raw.End,
			Category:    strings.TrimSpace(raw.Category),
			Confidence:  raw.Confidence,
			Description: strings.TrimSpace(raw.Description),
		})
	}
	return candidates, nil
}

func buildUserPrompt(req Request) string {
	categories := make([]string, 0, len(req.EnabledCategories))
	for _, category := range req.EnabledCategories {
		categories = append(categories, string(category))
	}

	var sb strings.Builder
	if title := strings.TrimSpace(req.VideoTitle); title != "" {
		fmt.Fprintf(&sb, "Video title: %s\n", title)
	}
	fmt.Fprintf(&sb, "Requested categories: %s\n", strings.Join(categories, ", "))
	fmt.Fprintf(&sb, "Confidence threshold: %.2f\n\n", req.ConfidenceThreshold)
	sb.WriteString("Transcript:\n")
	sb.WriteString(strings.Join(req.TranscriptLines, "\n"))
	return sb.String()
}
