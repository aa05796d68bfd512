// Package validation reports problems in a metadata table before planning.
//
// Issues carry a level (ERROR blocks planning, WARN does not), a stable code,
// and a human-readable message. Missing-file checks reuse the planner's
// normalization and matching primitives so both agree on what "found" means.
package validation
