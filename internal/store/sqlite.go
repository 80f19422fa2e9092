package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on files.digest
const currentSchemaVersion = 1

// SQLite stores History in a SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens a SQLite history database at path.
// Applies required pragmas and migrations automatically. Opening a new path
// yields an empty, valid History.
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLite, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Path returns the database location.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the full History. Files are keyed by id; dates come back in
// append order.
func (s *SQLite) Load(ctx context.Context) (History, error) {
	h := NewHistory()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, digest FROM files ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return History{}, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, d string
		if err := rows.Scan(&id, &d); err != nil {
			return History{}, fmt.Errorf("scan file: %w", err)
		}
		h.Files[id] = d
	}
	if err := rows.Err(); err != nil {
		return History{}, fmt.Errorf("iterate files: %w", err)
	}

	dateRows, err := s.db.QueryContext(ctx, `
		SELECT date FROM upload_dates ORDER BY seq ASC
	`)
	if err != nil {
		return History{}, fmt.Errorf("query upload dates: %w", err)
	}
	defer dateRows.Close()

	for dateRows.Next() {
		var date string
		if err := dateRows.Scan(&date); err != nil {
			return History{}, fmt.Errorf("scan upload date: %w", err)
		}
		h.UploadDates = append(h.UploadDates, date)
	}
	if err := dateRows.Err(); err != nil {
		return History{}, fmt.Errorf("iterate upload dates: %w", err)
	}

	return h, nil
}

// Save replaces the stored History in a single transaction. Identifiers that
// already exist keep their original position.
func (s *SQLite) Save(ctx context.Context, h History) error {
	h = h.normalize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save history: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	existing, nextSeq, err := readFileSeqs(ctx, tx)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return fmt.Errorf("save history: clear files: %w", err)
	}
	for _, entry := range h.Entries() {
		seq, ok := existing[entry.ID]
		if !ok {
			seq = nextSeq
			nextSeq++
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO files (id, digest, seq) VALUES (?, ?, ?)
		`, entry.ID, entry.Digest, seq); err != nil {
			return fmt.Errorf("save history: insert file %q: %w", entry.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM upload_dates`); err != nil {
		return fmt.Errorf("save history: clear upload dates: %w", err)
	}
	for i, date := range h.UploadDates {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO upload_dates (seq, date) VALUES (?, ?)
		`, i+1, date); err != nil {
			return fmt.Errorf("save history: insert upload date: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save history: commit: %w", err)
	}
	return nil
}

// readFileSeqs returns the current id→seq mapping and the next free seq.
func readFileSeqs(ctx context.Context, tx *sql.Tx) (map[string]int64, int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, seq FROM files`)
	if err != nil {
		return nil, 0, fmt.Errorf("query file seqs: %w", err)
	}
	defer rows.Close()

	seqs := make(map[string]int64)
	var maxSeq int64
	for rows.Next() {
		var id string
		var seq int64
		if err := rows.Scan(&id, &seq); err != nil {
			return nil, 0, fmt.Errorf("scan file seq: %w", err)
		}
		seqs[id] = seq
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate file seqs: %w", err)
	}
	return seqs, maxSeq + 1, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes digests; the selection filter looks entries up by
// digest, not by id.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_files_digest ON files(digest)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLite) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
