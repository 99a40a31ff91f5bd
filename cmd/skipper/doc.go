// Command skipper is the CLI for one-shot transcript analysis, cache and
// statistics maintenance, and environment checks.
package main
