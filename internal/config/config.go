package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"skipper/internal/segment"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Skip contains the user-tunable skipping behavior: which categories are
// skipped, the lead buffer, and the preview/auto-skip toggles.
type Skip struct {
	Sponsors        bool    `toml:"sponsors"`
	Intros          bool    `toml:"intros"`
	Outros          bool    `toml:"outros"`
	Donations       bool    `toml:"donations"`
	SelfPromo       bool    `toml:"self_promo"`
	Acknowledgments bool    `toml:"acknowledgments"`
	Merchandise     bool    `toml:"merchandise"`
	Buffer          float64 `toml:"buffer"`
	EnablePreview   bool    `toml:"enable_preview"`
	AutoSkip        bool    `toml:"auto_skip"`
}

// Classifier contains configuration for the segment classification API.
type Classifier struct {
	APIKey              string  `toml:"api_key"`
	BaseURL             string  `toml:"base_url"`
	Model               string  `toml:"model"`
	Referer             string  `toml:"referer"`
	Title               string  `toml:"title"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
}

// Transcript contains tuning for the transcript extraction strategies.
type Transcript struct {
	Locale                 string `toml:"locale"`
	PanelPollAttempts      int    `toml:"panel_poll_attempts"`
	PanelPollIntervalMs    int    `toml:"panel_poll_interval_ms"`
	InterceptTimeoutSecond int    `toml:"intercept_timeout_seconds"`
}

// Cache contains analysis cache retention settings.
type Cache struct {
	RetentionDays      int `toml:"retention_days"`
	SweepIntervalHours int `toml:"sweep_interval_hours"`
}

// Config is the root configuration object.
type Config struct {
	Paths            Paths      `toml:"paths"`
	Skip             Skip       `toml:"skip"`
	Classifier       Classifier `toml:"classifier"`
	Transcript       Transcript `toml:"transcript"`
	Cache            Cache      `toml:"cache"`
	ChannelWhitelist []string   `toml:"channel_whitelist"`
	LogLevel         string     `toml:"log_level"`
	LogFormat        string     `toml:"log_format"`
}

// DefaultConfigPath returns the expected config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "skipper", "config.toml"), nil
}

// Load reads configuration from path, applying defaults for unset fields and
// the SKIPPER_API_KEY environment override. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if key := strings.TrimSpace(os.Getenv("SKIPPER_API_KEY")); key != "" {
		cfg.Classifier.APIKey = key
	}

	cfg.Normalize()
	return &cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the configured data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// CacheDBPath returns the path of the key-value database file.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.Paths.DataDir, "cache.db")
}

// StatsDBPath returns the path of the statistics database file.
func (c *Config) StatsDBPath() string {
	return filepath.Join(c.Paths.DataDir, "stats.db")
}

// LockFilePath returns the daemon lock file location.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.DataDir, "skipperd.lock")
}

// LogFilePath returns the daemon log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "skipper.log")
}

// EnabledCategories returns the categories the user wants skipped. Only these
// are requested from the classifier, reducing prompt size and false positives.
func (c *Config) EnabledCategories() []segment.Category {
	var categories []segment.Category
	if c.Skip.Sponsors {
		categories = append(categories, segment.CategorySponsor)
	}
	if c.Skip.Intros {
		categories = append(categories, segment.CategoryIntro)
	}
	if c.Skip.Outros {
		categories = append(categories, segment.CategoryOutro)
	}
	if c.Skip.Donations {
		categories = append(categories, segment.CategoryDonations)
	}
	if c.Skip.SelfPromo {
		categories = append(categories, segment.CategorySelfPromo)
	}
	if c.Skip.Acknowledgments {
		categories = append(categories, segment.CategoryAcknowledgments)
	}
	if c.Skip.Merchandise {
		categories = append(categories, segment.CategoryMerchandise)
	}
	return categories
}

// ChannelWhitelisted reports whether analysis is disabled for the channel.
func (c *Config) ChannelWhitelisted(channelID string) bool {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return false
	}
	for _, entry := range c.ChannelWhitelist {
		if strings.TrimSpace(entry) == channelID {
			return true
		}
	}
	return false
}
