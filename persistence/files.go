package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrCancelled means the caller abandoned a read or write. The document is
// unchanged and editing continues.
var ErrCancelled = errors.New("operation cancelled")

// FileAccess reads and writes the user's chosen document files.
type FileAccess interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// LocalFiles stores documents as .ffe files under Dir.
type LocalFiles struct {
	Dir string
}

// NewLocalFiles returns a LocalFiles rooted at dir, creating it if needed.
func NewLocalFiles(dir string) (*LocalFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	return &LocalFiles{Dir: dir}, nil
}

// Resolve maps a document name to its path. Relative names are placed under
// Dir and the .ffe extension is added when missing.
func (f *LocalFiles) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("document name is required")
	}
	if !strings.EqualFold(filepath.Ext(name), Extension) {
		name += Extension
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	path := filepath.Join(f.Dir, name)
	rel, err := filepath.Rel(f.Dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("document %q is outside %s", name, f.Dir)
	}
	return path, nil
}

// Read returns the bytes of the named document.
func (f *LocalFiles) Read(ctx context.Context, name string) ([]byte, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	path, err := f.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	return data, nil
}

// Write replaces the named document. The bytes go to a temporary file that
// is renamed into place, so a failed write never leaves a partial file.
func (f *LocalFiles) Write(ctx context.Context, name string, data []byte) error {
	if err := cancelled(ctx); err != nil {
		return err
	}
	path, err := f.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ffe-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := cancelled(ctx); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// List returns the names of the .ffe documents directly under Dir.
func (f *LocalFiles) List() ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", f.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}
