package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/tavla/internal/models"
)

// FS implements Provider backed by a single file on the local file
// system. The parent directory must already exist; the file itself may
// not yet.
type FS struct {
	path string // absolute path to the board file
}

// NewFS creates a provider for the board file at the given path.
func NewFS(path string) (*FS, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("store: resolve path: %w", err)
	}
	info, err := os.Stat(filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("store: stat board dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store: parent is not a directory: %s", filepath.Dir(abs))
	}
	return &FS{path: abs}, nil
}

// Path returns the absolute board file path.
func (f *FS) Path() string {
	return f.path
}

// Load reads and decodes the board document. A missing file yields an
// empty board.
func (f *FS) Load() (models.Board, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewBoard(), nil
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("store: read %s: %w", f.path, err)
	}
	return Decode(data)
}

// Save atomically writes the document: tmp file → fsync → rename.
func (f *FS) Save(b models.Board) error {
	data, err := Encode(b)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".tavla-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}
