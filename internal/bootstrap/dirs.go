package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDirMode is the permission mode for created runtime directories.
const DefaultDirMode os.FileMode = 0o755

// Dir is a runtime directory after EnsureDirs.
type Dir struct {
	Path    string
	Created bool
}

// EnsureDirs creates each dir under root if absent. Existing directories are
// left untouched, so repeated calls succeed and yield the same set.
func EnsureDirs(root string, dirs ...string) ([]Dir, error) {
	out := make([]Dir, 0, len(dirs))
	for _, d := range dirs {
		p := d
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, d)
		}

		info, err := os.Stat(p)
		switch {
		case err == nil && info.IsDir():
			out = append(out, Dir{Path: p})
			continue
		case err == nil:
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, p)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if err := os.MkdirAll(p, DefaultDirMode); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", p, err)
		}
		out = append(out, Dir{Path: p, Created: true})
	}
	return out, nil
}

// CheckWritable verifies the process can create files in dir.
func CheckWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
	}
	name := f.Name()
	f.Close()

	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to remove write check file: %w", err)
	}
	return nil
}
