// Package metadata reads participant tables from CSV, TSV, or XLSX files and
// turns their rows into normalized planning records.
package metadata
