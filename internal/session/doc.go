// Package session persists meeting recording sessions in SQLite and defines
// their lifecycle.
//
// The Store manages database connections, schema initialization, the per
// session directory tree under the data root, and the status updates the
// recorder drives. Status transitions mirror the recording lifecycle; Next is
// the single authority on which event is legal from which state, and callers
// must consult it before persisting a new status.
//
// Treat this package as the single source of truth for session semantics; when
// you add new statuses or metadata fields, update schema.sql and bump
// schemaVersion.
package session
