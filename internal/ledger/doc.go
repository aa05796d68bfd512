// Package ledger records apply runs and their operations in a SQLite
// database so past runs can be listed and inspected.
//
// Each run gets a UUID when it begins. Operations are appended as they
// complete, and FinishRun stores the final counters and status. The schema is
// embedded and versioned; a database created by a different schema version
// is rejected with ErrSchemaMismatch rather than migrated.
package ledger
