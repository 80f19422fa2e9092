package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// JSONFile stores History as a single JSON document.
type JSONFile struct {
	path string
}

// OpenJSON returns a JSON document store at path. The file is not touched
// until Load or Save.
func OpenJSON(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the document location.
func (s *JSONFile) Path() string {
	return s.path
}

// Close is a no-op.
func (s *JSONFile) Close() error {
	return nil
}

// Load reads the document, creating it with an empty History if absent.
func (s *JSONFile) Load(ctx context.Context) (History, error) {
	if err := ctx.Err(); err != nil {
		return History{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		h := NewHistory()
		if err := s.write(h); err != nil {
			return History{}, fmt.Errorf("initialize history: %w", err)
		}
		return h, nil
	}
	if err != nil {
		return History{}, fmt.Errorf("read history: %w", err)
	}

	h, err := decodeDocument(data)
	if err != nil {
		return History{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return h, nil
}

// Save atomically replaces the document.
func (s *JSONFile) Save(ctx context.Context, h History) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.write(h); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *JSONFile) write(h History) error {
	data, err := encodeDocument(h)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data, 0644)
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, renames it over path and syncs the directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	committed = true

	// Directory sync makes the rename durable. Not every platform supports it.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}
