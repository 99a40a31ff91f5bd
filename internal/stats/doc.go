// Package stats records skip events and serves aggregate time-saved totals.
package stats
