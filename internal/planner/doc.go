// Package planner turns metadata records and a file snapshot into an ordered,
// conflict-free list of copy operations.
//
// Records are processed strictly in table order as a fold over an explicit
// state value holding the claim set and the operations emitted so far. A file
// claimed by an earlier record is never offered to a later one. Candidates for
// a record are sorted (compressed files first, then by name, then by path) so
// repeated runs produce identical output.
//
// Records without candidates produce no operation and no error. The only
// planner error is a derivatives run without a pipeline name, reported before
// the snapshot is read.
package planner
