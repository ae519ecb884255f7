// Package core provides the file cleanup pipeline behind the web UI.
//
// Each uploaded file moves through independent, stateless steps:
//
//	Ingest -> cleaning (duplicates, sparse columns, fill) -> SelectColumns -> Export | BuildArchive
//
// The step functions (ApplyDuplicatePolicy, DropSparseColumns, FillMissing,
// SelectColumns, Export, BuildArchive) never mutate their input; they return a
// new table which the caller writes back into a Workspace. A Workspace is the
// per-session mapping from file name to its latest table. It keeps no history,
// so every write replaces the previous version.
//
// Service wires the step functions to a Workspace and adds the ambient
// concerns: upload concurrency limits, structured logging and metrics.
//
// # Errors
//
// Validation problems (no columns selected, empty custom value, non-numeric
// column for mean/median, threshold out of range) are returned before any
// state changes. MapError turns any returned error into a UserMessage with a
// support code for display.
package core
