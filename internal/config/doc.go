// Package config loads, normalizes, and validates vinyl's TOML
// configuration.
//
// Load resolves the config file (explicit path, then
// ~/.config/vinyl/config.toml, then a project-local vinyl.toml), decodes it
// over the repository defaults, expands every path field, and validates the
// result. Callers receive a fully resolved Config; no other package reads
// the file or environment again.
package config
