// Package dataset executes transform plans and writes the files that make an
// output tree a BIDS dataset.
//
// Apply carries out copy or move operations one at a time, recording a
// failure for each operation that cannot be completed and continuing with the
// rest. The sidecar writers produce dataset_description.json, participants.tsv,
// README.md, phenotype and publication folders, and the Markdown run report.
// AcquireLock serializes apply runs that target the same output tree.
package dataset
