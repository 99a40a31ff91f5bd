// Package analysis coordinates the per-video classification pipeline and
// caches its results.
package analysis
