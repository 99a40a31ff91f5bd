// Package preflight verifies the environment before the daemon or a
// command relies on it.
package preflight
