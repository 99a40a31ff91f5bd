package config

const (
	defaultDataDir             = "~/.local/share/skipper"
	defaultLogDir              = "~/.local/share/skipper/logs"
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
	defaultSkipBuffer          = 2.0
	defaultClassifierBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultClassifierModel     = "google/gemini-3-flash-preview"
	defaultClassifierReferer   = "https://github.com/skipper/skipper"
	defaultClassifierTitle     = "Skipper Segment Classifier"
	defaultClassifierTimeout   = 60
	defaultConfidenceThreshold = 0.85
	defaultTranscriptLocale    = "en"
	defaultPanelPollAttempts   = 10
	defaultPanelPollIntervalMs = 800
	defaultInterceptTimeoutSec = 10
	defaultCacheRetentionDays  = 30
	defaultSweepIntervalHours  = 24
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Skip: Skip{
			Sponsors:      true,
			Intros:        true,
			Outros:        true,
			Donations:     true,
			SelfPromo:     true,
			Buffer:        defaultSkipBuffer,
			EnablePreview: true,
			AutoSkip:      true,
		},
		Classifier: Classifier{
			BaseURL:             defaultClassifierBaseURL,
			Model:               defaultClassifierModel,
			Referer:             defaultClassifierReferer,
			Title:               defaultClassifierTitle,
			TimeoutSeconds:      defaultClassifierTimeout,
			ConfidenceThreshold: defaultConfidenceThreshold,
		},
		Transcript: Transcript{
			Locale:                 defaultTranscriptLocale,
			PanelPollAttempts:      defaultPanelPollAttempts,
			PanelPollIntervalMs:    defaultPanelPollIntervalMs,
			InterceptTimeoutSecond: defaultInterceptTimeoutSec,
		},
		Cache: Cache{
			RetentionDays:      defaultCacheRetentionDays,
			SweepIntervalHours: defaultSweepIntervalHours,
		},
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}
