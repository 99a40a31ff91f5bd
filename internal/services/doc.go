// Package services defines the shared error taxonomy and context plumbing
// used across the analysis pipeline. Sentinel errors classify failures for
// propagation policy decisions; Wrap attaches component context while
// preserving the sentinel for errors.Is checks.
package services
