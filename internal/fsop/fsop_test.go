package fsop_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/fsop"
	"toolproof/internal/toolerr"
)

func TestWrite_CreatesIntermediateDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "file.txt")
	require.NoError(t, fsop.Write(path, "hello"))

	got, err := fsop.ReadUTF8(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, fsop.Write(path, "first"))
	require.NoError(t, fsop.Write(path, "second"))

	got, err := fsop.ReadUTF8(path)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestReadUTF8_MissingFile(t *testing.T) {
	_, err := fsop.ReadUTF8(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	te, ok := toolerr.As(err)
	require.True(t, ok)
	assert.Equal(t, toolerr.FileMissing, te.Kind)
}

func TestReadUTF8_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.dat")
	require.NoError(t, fsop.Write(path, "\xff\xfe\x00invalid"))

	_, err := fsop.ReadUTF8(path)
	require.Error(t, err)
	te, ok := toolerr.As(err)
	require.True(t, ok)
	assert.Equal(t, toolerr.FileNotUtf8, te.Kind)
}

func TestRemoveAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b.txt")
	require.NoError(t, fsop.Write(path, "x"))
	require.NoError(t, fsop.RemoveAll(filepath.Join(dir, "a")))

	_, err := fsop.ReadUTF8(path)
	assert.Error(t, err)
}
