package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize expands tildes and trims whitespace across path and identifier
// fields. Called by Load; safe to call repeatedly.
func (c *Config) Normalize() {
	c.Paths.DataDir = expandPath(c.Paths.DataDir)
	c.Paths.LogDir = expandPath(c.Paths.LogDir)

	c.Classifier.APIKey = strings.TrimSpace(c.Classifier.APIKey)
	c.Classifier.BaseURL = strings.TrimSpace(c.Classifier.BaseURL)
	c.Classifier.Model = strings.TrimSpace(c.Classifier.Model)
	c.Transcript.Locale = strings.TrimSpace(c.Transcript.Locale)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	whitelist := c.ChannelWhitelist[:0]
	for _, entry := range c.ChannelWhitelist {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			whitelist = append(whitelist, trimmed)
		}
	}
	c.ChannelWhitelist = whitelist
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
