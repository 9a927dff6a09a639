// Package project persists caption editing projects in SQLite.
//
// A project records the staged video, the caption list, the caption style and
// the app state of its editing session. Captions and style are stored as JSON
// columns so the editor can restore a session without a schema per field.
//
// The schema is embedded and versioned; a database written by a different
// version is rejected with ErrSchemaMismatch rather than migrated. Writes retry
// briefly on SQLITE_BUSY so the API server and CLI can share one database.
package project
