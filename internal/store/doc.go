// Package store persists publication history: which content digests have been
// published, under which identifier, and on which dates.
//
// History is the only durable state. It is read once at the start of a run and
// written at most once, after a publication has been confirmed. A crash before
// that write leaves the previous state intact, which makes the same candidate
// eligible again on the next run.
//
// # Backends
//
// Two backends implement [Store]:
//   - JSON document (default): {"files": {id: digest}, "upload_dates": [date...]}.
//     Writes are atomic: temp file, fsync, rename, directory fsync.
//   - SQLite: files and upload_dates tables with insertion order kept in seq
//     columns. Selected by a .db, .sqlite or .sqlite3 path.
//
// Both round-trip a History exactly. A missing store is initialized to an empty
// but valid History on first Load.
//
// # Database Configuration (SQLite)
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//
// Concurrent runs against the same store are not supported.
package store
