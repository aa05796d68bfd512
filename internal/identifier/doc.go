// Package identifier canonicalizes participant and session identifiers so
// metadata values and file names can be compared token by token.
//
// Normalize lowercases, replaces every character outside a-z and 0-9 with the
// boundary marker, and zero-pads purely numeric values to three digits. The
// matcher applies the same transformation to file names so markers line up.
package identifier
