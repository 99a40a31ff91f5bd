// Package logging provides slog-based structured logging with console and
// JSON handlers, component loggers, and standardized field keys shared by
// every part of the skip pipeline.
package logging
