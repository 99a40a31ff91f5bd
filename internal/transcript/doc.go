// Package transcript models timed caption data and acquires it through
// multiple fallback extraction strategies: structured panel scan, embedded
// player-config discovery, and a network-intercept wait.
package transcript
