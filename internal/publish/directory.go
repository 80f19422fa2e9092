package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/codedrop/internal/engine"
)

// Directory publishes each container as a subdirectory of Root.
type Directory struct {
	root   string
	logger *slog.Logger
}

// NewDirectory returns a Directory target rooted at root.
func NewDirectory(root string, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{root: root, logger: logger}
}

// CreateContainer creates Root/name. An existing container fails with
// engine.ErrContainerExists.
func (d *Directory) CreateContainer(ctx context.Context, name string) (engine.Container, error) {
	if err := ctx.Err(); err != nil {
		return engine.Container{}, err
	}
	if err := validName(name); err != nil {
		return engine.Container{}, fmt.Errorf("container: %w", err)
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return engine.Container{}, fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(d.root, name)
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return engine.Container{}, fmt.Errorf("container %s: %w", path, engine.ErrContainerExists)
		}
		return engine.Container{}, fmt.Errorf("create container: %w", err)
	}

	d.logger.Info("container created", "container", name, "path", path)
	return d.container(name, path), nil
}

// OpenContainer returns the existing container Root/name and the files it
// holds, sorted by name.
func (d *Directory) OpenContainer(ctx context.Context, name string) (engine.Container, []string, error) {
	if err := ctx.Err(); err != nil {
		return engine.Container{}, nil, err
	}
	if err := validName(name); err != nil {
		return engine.Container{}, nil, fmt.Errorf("container: %w", err)
	}

	path := filepath.Join(d.root, name)
	entries, err := os.ReadDir(path)
	if err != nil {
		return engine.Container{}, nil, fmt.Errorf("open container: %w", err)
	}
	var artifacts []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), tempPrefix) {
			artifacts = append(artifacts, entry.Name())
		}
	}

	d.logger.Info("container opened", "container", name, "path", path, "artifacts", len(artifacts))
	return d.container(name, path), artifacts, nil
}

func (d *Directory) container(name, path string) engine.Container {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return engine.Container{
		Name: name,
		URL:  (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
	}
}

// tempPrefix marks artifacts still being written.
const tempPrefix = ".codedrop-"

// AddArtifact writes content to the container through a temp file and a
// rename, replacing any file of the same name.
func (d *Directory) AddArtifact(ctx context.Context, container engine.Container, name, content, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}

	dir := filepath.Join(d.root, container.Name)
	f, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	tmp := f.Name()
	if err := writeSynced(f, content); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename artifact: %w", err)
	}

	d.logger.Debug("artifact written", "container", container.Name, "artifact", name, "message", message)
	return nil
}

func writeSynced(f *os.File, content string) error {
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	return nil
}

// validName rejects names that would escape the target directory.
func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("name %q contains a path separator", name)
	}
	return nil
}
