// Package config loads, validates, and normalizes channelduel configuration.
//
// Configuration comes from a TOML file; Load falls back to repository
// defaults when no file exists so a fresh checkout works without setup.
package config
