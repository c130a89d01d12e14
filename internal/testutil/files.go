package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile creates dir/name with the given content and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// WriteSizedFile creates dir/name filled with size bytes.
func WriteSizedFile(t *testing.T, dir, name string, size int) string {
	t.Helper()

	return WriteFile(t, dir, name, string(make([]byte, size)))
}
