// Package classifier talks to an OpenRouter-compatible chat completion API
// to turn a video transcript into candidate skip intervals. It owns retry
// and backoff behavior, JSON-quirk-tolerant decoding, and the classification
// prompt contract.
package classifier
