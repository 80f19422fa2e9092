package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Store loads and saves History.
type Store interface {
	// Load returns the persisted History. A missing store is created with an
	// empty History and that History is returned.
	Load(ctx context.Context) (History, error)

	// Save replaces the persisted History. Callers invoke it only after the
	// event it records has actually happened.
	Save(ctx context.Context, h History) error

	// Path returns the location of the backing file.
	Path() string

	// Close releases resources held by the backend.
	Close() error
}

// Open returns the backend for path: SQLite for .db, .sqlite and .sqlite3
// files, the JSON document store for anything else.
func Open(path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: path is required")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return OpenJSON(path), nil
	}
}

// Export writes h to w in the JSON document format.
func Export(w io.Writer, h History) error {
	data, err := encodeDocument(h)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	return nil
}

// encodeDocument renders h with four-space indentation.
func encodeDocument(h History) ([]byte, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(h.normalize()); err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return []byte(b.String()), nil
}

// decodeDocument parses a JSON document into a normalized History.
func decodeDocument(data []byte) (History, error) {
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return History{}, fmt.Errorf("parse history: %w", err)
	}
	return h.normalize(), nil
}
