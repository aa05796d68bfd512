// Package logging assembles structured slog loggers and formatting helpers used
// across bidslite commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so planning and apply code can
// tag log lines with run identifiers and component names. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
