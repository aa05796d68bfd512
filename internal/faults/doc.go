// Package faults defines the error markers and context helpers shared by the
// planning engine, its collaborators, and the CLI.
//
// Key responsibilities:
//   - Sentinel markers (configuration, validation, not found, I/O, locked) that
//     callers test with errors.Is.
//   - The Wrap helper that prefixes failures with component and operation
//     context without losing the marker or the underlying cause.
//   - Context helpers that stamp run identifiers for logging and reports.
package faults
