package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed interval or settings data. The offending
	// item is dropped and processing continues.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration values.
	ErrConfiguration = errors.New("configuration error")
	// ErrTranscriptUnavailable marks a video for which no caption data could
	// be obtained by any strategy. Terminal for that video's analysis attempt.
	ErrTranscriptUnavailable = errors.New("transcript not available")
	// ErrExtraction marks a single transcript strategy failure while other
	// strategies remain to be tried.
	ErrExtraction = errors.New("transcript extraction failed")
	// ErrClassifier marks a failed or unusable classifier response. Terminal
	// for the attempt and never cached.
	ErrClassifier = errors.New("classifier error")
	// ErrStorage marks a persistence failure. Logged only; in-memory skip
	// behavior keeps working for the rest of the session.
	ErrStorage = errors.New("storage error")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks failures worth retrying on the next user action.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage maps an error to the message surfaced to the user. Transcript
// absence gets a distinct, actionable message versus a generic classifier
// failure.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTranscriptUnavailable):
		return "This video has no captions; nothing to analyze."
	case errors.Is(err, ErrClassifier):
		return "Segment classification failed. Try again or check the classifier configuration."
	case errors.Is(err, ErrConfiguration):
		return "Skipper is misconfigured. Run 'skipper config show' to inspect settings."
	case errors.Is(err, ErrStorage):
		return "Could not persist the analysis; skipping still works for this session."
	default:
		return "Analysis failed. See logs for details."
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
