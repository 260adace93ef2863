// Package logging assembles the structured slog loggers used across vinyl.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers plus standard field names so every
// component tags its lines the same way. The interactive UI logs to a file
// only; writing to stdout would corrupt the alternate screen, so
// NewFromConfig never opens it. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
