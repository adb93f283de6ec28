package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo\nbar\n"), 0o600))

	text, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "foo\nbar\n", text)
}

func TestReadText_Missing(t *testing.T) {
	_, err := ReadText(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.txt")
	require.NoError(t, WriteText(path, "baz\nqux\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "baz\nqux\n", string(data))
}

func TestWriteText_MakesParentDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "foo", "bar")
	path := filepath.Join(dir, "foo.txt")
	require.NoError(t, WriteText(path, "baz"))

	assert.DirExists(t, dir)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "baz", string(data))
}

func TestWriteText_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.txt")
	require.NoError(t, WriteText(path, "first"))
	require.NoError(t, WriteText(path, "second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_site")
	require.NoError(t, WriteText(filepath.Join(dir, "foo.txt"), "foo"))
	require.NoError(t, WriteText(filepath.Join(dir, "blog", "bar.txt"), "bar"))

	require.NoError(t, ClearDir(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClearDir_Missing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_site")
	require.NoError(t, ClearDir(dir))
	assert.DirExists(t, dir)
}
