package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/snapshot"
	"toolproof/internal/testdoc"
)

func writeDoc(t *testing.T, contents string) (*testdoc.Document, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.toolproof.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	doc, err := testdoc.Load(path)
	require.NoError(t, err)
	return doc, path
}

func TestAccept_RewritesExistingSnapshotContent(t *testing.T) {
	doc, path := writeDoc(t, `
name: snap
steps:
  - snapshot: the console
    snapshot_content: "old"
`)
	require.NoError(t, snapshot.Accept(doc, &doc.Steps[0], "╎new value"))

	reloaded, err := testdoc.Load(path)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Steps[0].SnapshotContent)
	assert.Equal(t, "╎new value", *reloaded.Steps[0].SnapshotContent)
}

func TestAccept_InsertsMissingSnapshotContent(t *testing.T) {
	doc, path := writeDoc(t, "name: snap\nsteps:\n  - snapshot: the console\n")
	require.NoError(t, snapshot.Accept(doc, &doc.Steps[0], "╎fresh"))

	reloaded, err := testdoc.Load(path)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Steps[0].SnapshotContent)
	assert.Equal(t, "╎fresh", *reloaded.Steps[0].SnapshotContent)
}

func TestAccept_PreservesSiblingSteps(t *testing.T) {
	doc, path := writeDoc(t, `
name: multi
steps:
  - I run the program
  - snapshot: the console
    snapshot_content: "old"
  - I run it again
`)
	require.NoError(t, snapshot.Accept(doc, &doc.Steps[1], "╎new"))

	reloaded, err := testdoc.Load(path)
	require.NoError(t, err)
	require.Len(t, reloaded.Steps, 3)
	assert.Equal(t, "I run the program", reloaded.Steps[0].Sentence)
	assert.Equal(t, "I run it again", reloaded.Steps[2].Sentence)
}
