// Package store provides the generic key-value persistence boundary used by
// the analysis cache, backed by SQLite on disk or a map in memory.
package store
