package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/itembox/internal/apperr"
)

// FS implements Provider backed by a local directory.
type FS struct {
	root       string // absolute path with trailing separator
	createRoot bool
}

// FSOption configures an FS.
type FSOption func(*FS)

// WithCreateRoot makes Create build a missing root (and parents) before
// making the item file. Exists, Delete and Entries never create it.
func WithCreateRoot() FSOption {
	return func(f *FS) {
		f.createRoot = true
	}
}

// NewFS creates a new FS provider rooted at the given directory.
// A missing root is accepted; a path that exists but is not a directory is not.
func NewFS(root string, opts ...FSOption) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("storage: stat root: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if !strings.HasSuffix(abs, string(os.PathSeparator)) {
		abs += string(os.PathSeparator)
	}
	f := &FS{root: abs}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// EnsureRoot creates the storage root (and parents) if it does not exist.
func EnsureRoot(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("storage: create root: %w", err)
	}
	return nil
}

// Root returns the absolute storage root with its trailing separator.
func (f *FS) Root() string {
	return f.root
}

type entryKind int

const (
	kindAbsent entryKind = iota
	kindFile
	kindDir
)

func (f *FS) kind(name string) (entryKind, error) {
	info, err := os.Stat(BuildPath(f.root, name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return kindAbsent, nil
	case err != nil:
		return kindAbsent, fmt.Errorf("storage: stat %s: %w", name, err)
	case info.IsDir():
		return kindDir, nil
	default:
		return kindFile, nil
	}
}

// Exists reports whether an item file is present. A directory of the same
// name is not an item.
func (f *FS) Exists(name string) (bool, error) {
	k, err := f.kind(name)
	return k == kindFile, err
}

// Create makes an empty file for the item. The exclusive open means a
// concurrent creator that wins the race also yields ErrAlreadyExists.
// A directory occupying the name is reported as ErrInvalidName.
func (f *FS) Create(name string) error {
	k, err := f.kind(name)
	if err != nil {
		return err
	}
	switch k {
	case kindFile:
		return fmt.Errorf("storage: create %s: %w", name, apperr.ErrAlreadyExists)
	case kindDir:
		return fmt.Errorf("storage: create %s: name is taken by a directory: %w", name, apperr.ErrInvalidName)
	}
	if f.createRoot {
		if err := EnsureRoot(f.root); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(BuildPath(f.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("storage: create %s: %w", name, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("storage: create %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", name, err)
	}
	return nil
}

// Delete removes the item file. Directories are never removed.
func (f *FS) Delete(name string) error {
	exists, err := f.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
	}
	if err := os.Remove(BuildPath(f.root, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// Entries lists the item files directly under the root, in whatever order
// the directory read yields. That order is not stable across calls.
//
// Entries whose info cannot be read are skipped, as are subdirectories.
// Only a root that cannot be read at all is an error.
func (f *FS) Entries() ([]string, error) {
	dir, err := os.Open(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: open root: %w: %w", apperr.ErrEnumeration, err)
	}
	defer dir.Close()

	dirents, err := dir.ReadDir(-1)
	if err != nil && len(dirents) == 0 {
		return nil, fmt.Errorf("storage: read root: %w: %w", apperr.ErrEnumeration, err)
	}

	out := make([]string, 0, len(dirents))
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, strings.TrimPrefix(BuildPath(f.root, d.Name()), f.root))
	}
	return out, nil
}
