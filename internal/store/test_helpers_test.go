package store

import (
	"path/filepath"
	"testing"
)

// createTestSQLite creates a new SQLite history store for testing.
func createTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleHistory returns a History with two entries and two dates.
func sampleHistory() History {
	return History{
		Files: map[string]string{
			"/corpus/b.py": "bbbb",
			"/corpus/a.py": "aaaa",
		},
		UploadDates: []string{"2026-10-17", "2026-10-18"},
	}
}
