// Package corpus enumerates candidate source files under a root directory.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPatterns matches Python sources.
var DefaultPatterns = []string{"*.py"}

// Candidate is a file considered for publication.
type Candidate struct {
	// ID is the path the file was found at. It is the history key.
	ID string

	// Name is the base file name.
	Name string

	// Content is the exact file bytes.
	Content []byte
}

// Walker lists files under Root whose base name matches any of Patterns.
type Walker struct {
	Root     string
	Patterns []string
	Logger   *slog.Logger
}

// NewWalker returns a Walker over root. Empty patterns select DefaultPatterns.
func NewWalker(root string, patterns []string, logger *slog.Logger) *Walker {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{Root: root, Patterns: patterns, Logger: logger}
}

// List walks Root recursively and returns matching files in lexical path
// order. Hidden directories are skipped. Unreadable subdirectories and files
// are logged and skipped; a missing or unreadable root is an error.
func (w *Walker) List(ctx context.Context) ([]Candidate, error) {
	for _, p := range w.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("corpus: bad pattern %q: %w", p, err)
		}
	}

	info, err := os.Stat(w.Root)
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus: not a directory: %s", w.Root)
	}

	var candidates []Candidate
	err = filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == w.Root {
				return walkErr
			}
			w.Logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != w.Root && isHidden(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !w.matches(d.Name()) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			w.Logger.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		candidates = append(candidates, Candidate{
			ID:      path,
			Name:    d.Name(),
			Content: content,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("corpus: walk %s: %w", w.Root, err)
	}

	return candidates, nil
}

func (w *Walker) matches(name string) bool {
	for _, p := range w.Patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
