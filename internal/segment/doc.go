// Package segment owns the interval math at the heart of the skip engine:
// validated half-open time ranges, deterministic overlap merging, and the
// always-normalized set the playback monitor queries on every tick.
package segment
