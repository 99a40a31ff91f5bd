package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSkip(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateTranscript(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSkip() error {
	if c.Skip.Buffer < 0 || c.Skip.Buffer > 10 {
		return errors.New("skip.buffer must be between 0 and 10 seconds")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/skipper/config.toml"
		}
		return fmt.Errorf("classifier.api_key is required. Set SKIPPER_API_KEY env var or edit %s (create with 'skipper config init')", defaultPath)
	}
	if c.Classifier.Model == "" {
		return errors.New("classifier.model must be set")
	}
	if c.Classifier.ConfidenceThreshold < 0 || c.Classifier.ConfidenceThreshold > 1 {
		return errors.New("classifier.confidence_threshold must be between 0 and 1")
	}
	if c.Classifier.TimeoutSeconds < 0 {
		return errors.New("classifier.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTranscript() error {
	if c.Transcript.PanelPollAttempts <= 0 {
		return errors.New("transcript.panel_poll_attempts must be positive")
	}
	if c.Transcript.PanelPollIntervalMs <= 0 {
		return errors.New("transcript.panel_poll_interval_ms must be positive")
	}
	if c.Transcript.InterceptTimeoutSecond <= 0 {
		return errors.New("transcript.intercept_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.RetentionDays <= 0 {
		return errors.New("cache.retention_days must be positive")
	}
	if c.Cache.SweepIntervalHours <= 0 {
		return errors.New("cache.sweep_interval_hours must be positive")
	}
	return nil
}
