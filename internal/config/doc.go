// Package config loads, validates, and normalizes the TOML configuration
// that drives the stitcher daemon.
package config
