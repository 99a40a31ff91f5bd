// Package playback watches the video playhead and executes skips, with an
// optional cancellable preview countdown.
package playback
