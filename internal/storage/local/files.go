// Package local manages the download directory on the local filesystem.
package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dtroode/audiograb-server/internal/model"
)

var _ model.FileStore = (*FileStore)(nil)

// FileStore serves files from a single flat directory. Names are expected to
// be validated by the caller.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Open opens a regular file. Missing files and directories yield model.ErrNotFound.
func (s *FileStore) Open(name string) (*os.File, error) {
	if _, err := s.Stat(name); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

func (s *FileStore) Stat(name string) (model.FileInfo, error) {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.FileInfo{}, model.ErrNotFound
		}
		return model.FileInfo{}, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return model.FileInfo{}, model.ErrNotFound
	}
	return model.FileInfo{Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()}, nil
}

// List returns the regular files of the directory sorted by name.
func (s *FileStore) List() ([]model.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.dir, err)
	}

	files := make([]model.FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, model.FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// RemoveAll deletes the regular files of the directory and returns how many
// were removed. Subdirectories are kept.
func (s *FileStore) RemoveAll() (int, error) {
	files, err := s.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if err := os.Remove(s.Path(f.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove %s: %w", f.Name, err)
		}
		removed++
	}
	return removed, nil
}
