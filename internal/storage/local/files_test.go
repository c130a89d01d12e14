package local

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/audiograb-server/internal/model"
	"github.com/dtroode/audiograb-server/internal/testutil"
)

func TestFileStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, "b.mp3", "bbbb")
	testutil.WriteFile(t, dir, "a.mp3", "aa")
	testutil.WriteFile(t, dir, "a_thumbnail.jpg", "j")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	s := NewFileStore(dir)
	assert.Equal(t, dir, s.Dir())

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.mp3", files[0].Name)
	assert.Equal(t, int64(2), files[0].Size)
	assert.Equal(t, "b.mp3", files[2].Name)

	info, err := s.Stat("b.mp3")
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size)

	_, err = s.Stat("missing.mp3")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Stat("nested")
	assert.ErrorIs(t, err, model.ErrNotFound)

	f, err := s.Open("a.mp3")
	require.NoError(t, err)
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "aa", string(b))

	_, err = s.Open("missing.mp3")
	assert.ErrorIs(t, err, model.ErrNotFound)

	n, err := s.RemoveAll()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	files, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestFileStore_MissingDir(t *testing.T) {
	t.Parallel()

	s := NewFileStore(filepath.Join(t.TempDir(), "absent"))
	_, err := s.List()
	assert.Error(t, err)
	_, err = s.RemoveAll()
	assert.Error(t, err)
}
