package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("OpenSQLite() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("final OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"files", "upload_dates"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/dir/history.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestSQLiteClose_NilDB(t *testing.T) {
	s := &SQLite{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestSQLitePragmas(t *testing.T) {
	s := createTestSQLite(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestSQLiteMigration_DigestIndex(t *testing.T) {
	s := createTestSQLite(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_files_digest'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_files_digest", name)
}

func TestSQLiteLoad_EmptyDatabase(t *testing.T) {
	s := createTestSQLite(t)

	h, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, h.Files)
	assert.NotNil(t, h.UploadDates)
	assert.Empty(t, h.Files)
	assert.Empty(t, h.UploadDates)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()

	want := sampleHistory()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteRoundTrip_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleHistory()))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleHistory(), got)
}

func TestSQLiteSave_PreservesDateOrderAndDuplicates(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()

	h := NewHistory()
	h.UploadDates = []string{"2026-10-19", "2026-10-01", "2026-10-19"}
	require.NoError(t, s.Save(ctx, h))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-19", "2026-10-01", "2026-10-19"}, got.UploadDates)
}

func TestSQLiteSave_KeepsInsertionSeq(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()

	h := NewHistory().RecordPublication("/z.py", "zz", "2026-10-18")
	require.NoError(t, s.Save(ctx, h))

	h = h.RecordPublication("/a.py", "aa", "2026-10-19")
	require.NoError(t, s.Save(ctx, h))

	rows, err := s.db.Query("SELECT id FROM files ORDER BY seq ASC")
	require.NoError(t, err)
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"/z.py", "/a.py"}, ids, "earlier publication keeps the lower seq")
}

func TestSQLiteSave_OverwritesRemovedEntries(t *testing.T) {
	s := createTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleHistory()))
	require.NoError(t, s.Save(ctx, NewHistory()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Files)
	assert.Empty(t, got.UploadDates)
}
