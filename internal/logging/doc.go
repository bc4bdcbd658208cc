// Package logging provides slog construction helpers and the standardized
// structured field names used across the daemon.
package logging
