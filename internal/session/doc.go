// Package session coordinates per-video lifecycles across navigation events.
package session
