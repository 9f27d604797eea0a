// Package storage keeps rendered exports on local disk and signs links to them.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidName rejects names that would escape the storage directory.
var ErrInvalidName = errors.New("invalid file name")

// Disk stores flat files under one directory.
type Disk struct {
	dir string
	now func() time.Time
}

// NewDisk creates dir when missing.
func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		dir = "./exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Disk{dir: dir, now: time.Now}, nil
}

// Save writes data under name, replacing any previous file.
func (d *Disk) Save(name string, data []byte) error {
	path, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export %s: %w", name, err)
	}
	return nil
}

// Read returns the stored bytes. A missing file satisfies errors.Is(err, fs.ErrNotExist).
func (d *Disk) Read(name string) ([]byte, error) {
	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", name, err)
	}
	return data, nil
}

// Sweep removes files last modified more than olderThan ago and returns their names.
func (d *Disk) Sweep(olderThan time.Duration) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	cutoff := d.now().Add(-olderThan)
	removed := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("stat export %s: %w", entry.Name(), err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove export %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

func (d *Disk) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.dir, name), nil
}
