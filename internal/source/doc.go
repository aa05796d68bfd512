// Package source describes candidate input files and enumerates them from a
// directory snapshot.
//
// A File carries its full path, final name component, and the ancestor
// directory names between the scan root and the file. Scan walks the tree
// once, skips paths matching doublestar exclude patterns, and returns files in
// lexical path order.
package source
