// Package layout computes canonical BIDS destination paths.
//
// Raw datasets always carry a session segment. Derivatives datasets nest under
// derivatives/<pipeline> and carry a session segment only when one is known.
// Destination folder names are injected through Dirs.
package layout
