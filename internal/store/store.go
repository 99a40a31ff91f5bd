package store

import "context"

// KeyValueStore is the persistence boundary shared by the analysis cache and
// any other surface (popup, options) that reads the same data. It has no
// transactional guarantees; concurrent writers to the same key follow
// last-write-wins semantics.
type KeyValueStore interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes the given keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
	// ListKeys returns all keys starting with prefix.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// Close releases the underlying resources.
	Close() error
}
