// Package config loads, normalizes, and validates the TOML configuration
// that tunes skipping behavior, classifier access, transcript extraction,
// and cache retention.
package config
