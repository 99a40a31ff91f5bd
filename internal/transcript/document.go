package transcript

import (
	"strings"

	"skipper/internal/services"
)

// ParseDocument parses transcript text supplied out-of-band, for example a
// file handed to the analyze command. Two shapes are accepted: the raw JSON
// caption payload, or plain lines of the form "M:SS cue text".
func ParseDocument(content string) ([]Entry, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, services.Wrap(services.ErrValidation, "transcript", "parse document", "empty transcript document", nil)
	}

	if strings.HasPrefix(trimmed, "{") {
		var payload CaptionPayload
		if err := decodeCaptionJSON(trimmed, &payload); err != nil {
			return nil, services.Wrap(services.ErrValidation, "transcript", "parse document", "decode caption payload", err)
		}
		entries := entriesFromPayload(&payload)
		if len(entries) == 0 {
			return nil, services.Wrap(services.ErrValidation, "transcript", "parse document", "caption payload has no text", nil)
		}
		return entries, nil
	}

	var entries []Entry
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stamp, text, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		offset, err := ParseTimestamp(strings.Trim(stamp, "[]"))
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		entries = append(entries, Entry{Offset: offset, Text: text})
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrValidation, "transcript", "parse document", "no parsable transcript lines", nil)
	}
	return entries, nil
}
