// Package textutil provides fingerprinting and similarity helpers used to
// suggest the closest file name when a metadata row has no match.
//
// Fingerprints are term-frequency vectors. Word fingerprints split on
// non-alphanumeric runs and drop tokens shorter than 3 characters. Trigram
// fingerprints slide a three-character window over the alphanumeric
// characters, which suits short identifiers with no separators.
package textutil
