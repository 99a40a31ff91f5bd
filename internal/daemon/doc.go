// Package daemon coordinates the long-running skipper process.
//
// It wires configuration, the analysis cache, and the stats store into a
// single lifecycle with flock-based locking to prevent multiple instances,
// and runs the periodic cache sweep.
package daemon
