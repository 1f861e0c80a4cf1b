// Package fsop implements the file subsystem: creating, reading and
// cleaning up files relative to a test's temp directory.
package fsop

import (
	"os"
	"path/filepath"
	"unicode/utf8"

	"toolproof/internal/toolerr"
)

// Write creates or overwrites path (already resolved and checked not to
// escape the temp directory by the caller) with contents.
func Write(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return toolerr.Wrap(toolerr.FileEscapesTempDir, -1, path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return toolerr.Wrap(toolerr.FileMissing, -1, path, err)
	}
	return nil
}

// ReadUTF8 reads path as a UTF-8 string, failing FileMissing or
// FileNotUtf8.
func ReadUTF8(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", toolerr.Wrap(toolerr.FileMissing, -1, path, err)
	}
	if !utf8.Valid(data) {
		return "", toolerr.New(toolerr.FileNotUtf8, -1, path)
	}
	return string(data), nil
}

// RemoveAll deletes a test's temp directory tree.
func RemoveAll(path string) error {
	return os.RemoveAll(path)
}
