package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codedrop/internal/digest"
	"github.com/roach88/codedrop/internal/store"
)

func seedHistory(t *testing.T, path string) store.History {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	h := store.NewHistory().
		RecordPublication("/corpus/b.py", digest.Of([]byte("b")).String(), "2026-10-17").
		RecordPublication("/corpus/a.py", digest.Of([]byte("a")).String(), "2026-10-18")
	require.NoError(t, st.Save(t.Context(), h))
	return h
}

func TestHistoryShow_Text(t *testing.T) {
	e := newCLIEnv(t)
	seedHistory(t, e.history)

	stdout, _, err := e.execute(t, "history", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files (2):")
	assert.Contains(t, stdout, digest.Of([]byte("a")).Short()+"  /corpus/a.py")
	assert.Contains(t, stdout, "2026-10-17")
	assert.Less(t, strings.Index(stdout, "/corpus/a.py"), strings.Index(stdout, "/corpus/b.py"), "entries are sorted by id")
}

func TestHistoryShow_EmptyCreatesFile(t *testing.T) {
	e := newCLIEnv(t)

	stdout, _, err := e.execute(t, "history", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(empty)")
	assert.FileExists(t, e.history)
}

func TestHistoryShow_SQLiteJSON(t *testing.T) {
	e := newCLIEnv(t)
	e.history = filepath.Join(e.dir, "history.db")
	seedHistory(t, e.history)

	stdout, _, err := e.execute(t, "--format", "json", "history", "show")
	require.NoError(t, err)

	var resp struct {
		Data HistoryView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Len(t, resp.Data.Files, 2)
	assert.Equal(t, []string{"2026-10-17", "2026-10-18"}, resp.Data.UploadDates)
}

func TestHistoryExport_SQLiteToJSON(t *testing.T) {
	e := newCLIEnv(t)
	e.history = filepath.Join(e.dir, "history.db")
	want := seedHistory(t, e.history)
	out := filepath.Join(e.dir, "upload_history.json")

	_, _, err := e.execute(t, "history", "export", "--output", out)
	require.NoError(t, err)

	got, err := store.OpenJSON(out).Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, want.Files, got.Files)
	assert.Equal(t, want.UploadDates, got.UploadDates)
}

func TestHistoryExport_Stdout(t *testing.T) {
	e := newCLIEnv(t)
	seedHistory(t, e.history)

	stdout, _, err := e.execute(t, "history", "export")
	require.NoError(t, err)

	var h store.History
	require.NoError(t, json.Unmarshal([]byte(stdout), &h))
	assert.Len(t, h.Files, 2)
}

func TestHistoryShow_Corrupt(t *testing.T) {
	e := newCLIEnv(t)
	require.NoError(t, os.WriteFile(e.history, []byte("{not json"), 0o644))

	stdout, _, err := e.execute(t, "history", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "[E006]")
}
