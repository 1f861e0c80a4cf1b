package testdoc_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/testdoc"
	"toolproof/internal/toolerr"
)

func TestExpand_NoReferencesOrMacrosPassesThrough(t *testing.T) {
	doc := load(t, "name: plain\nsteps:\n  - I run the program\n  - I see the text \"done\"\n")
	exp := testdoc.NewExpander(nil)
	steps, err := exp.Expand(doc)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "I run the program", steps[0].Sentence)
}

func TestExpand_Reference(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "shared.toolproof.yml")
	writeFile(t, refPath, "name: shared\ntype: reference\nsteps:\n  - I log in\n  - I see the dashboard\n")

	docPath := filepath.Join(dir, "main.toolproof.yml")
	writeFile(t, docPath, "name: main\nsteps:\n  - ref: "+refPath+"\n  - I log out\n")
	doc, err := testdoc.Load(docPath)
	require.NoError(t, err)

	exp := testdoc.NewExpander(nil)
	steps, err := exp.Expand(doc)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "I log in", steps[0].Sentence)
	assert.Equal(t, "I see the dashboard", steps[1].Sentence)
	assert.Equal(t, "I log out", steps[2].Sentence)
}

func TestExpand_ReferenceCycleDetected(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.toolproof.yml")
	bPath := filepath.Join(dir, "b.toolproof.yml")
	writeFile(t, aPath, "name: a\nsteps:\n  - ref: "+bPath+"\n")
	writeFile(t, bPath, "name: b\nsteps:\n  - ref: "+aPath+"\n")

	doc, err := testdoc.Load(aPath)
	require.NoError(t, err)

	exp := testdoc.NewExpander(nil)
	_, err = exp.Expand(doc)
	require.Error(t, err)
	te, ok := toolerr.As(err)
	require.True(t, ok)
	assert.Equal(t, toolerr.ReferenceCycle, te.Kind)
}

func TestExpand_MacroInvocation(t *testing.T) {
	macroPath := filepath.Join(t.TempDir(), "m.toolproof.macro.yml")
	writeFile(t, macroPath, `
macro: I create a {kind} named {name}
steps:
  - I run "new {kind}"
  - I see the text "{name}"
`)
	macro, err := testdoc.Load(macroPath)
	require.NoError(t, err)

	doc := load(t, `
name: invoker
steps:
  - macro: I create a {kind} named {name}
    kind: widget
    name: gizmo
`)

	exp := testdoc.NewExpander([]*testdoc.Document{macro})
	steps, err := exp.Expand(doc)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, testdoc.KindInstruction, steps[0].Kind)
}

func TestExpand_MacroNotFoundErrors(t *testing.T) {
	doc := load(t, "name: invoker\nsteps:\n  - macro: I do a {thing}\n    thing: x\n")
	exp := testdoc.NewExpander(nil)
	_, err := exp.Expand(doc)
	require.Error(t, err)
	te, ok := toolerr.As(err)
	require.True(t, ok)
	assert.Equal(t, toolerr.ResolutionError, te.Kind)
}

func TestExpand_NestedMacroDepthExceeded(t *testing.T) {
	macroPath := filepath.Join(t.TempDir(), "m.toolproof.macro.yml")
	writeFile(t, macroPath, `
macro: I recurse
steps:
  - macro: I recurse
`)
	macro, err := testdoc.Load(macroPath)
	require.NoError(t, err)

	doc := load(t, "name: invoker\nsteps:\n  - macro: I recurse\n")
	exp := testdoc.NewExpander([]*testdoc.Document{macro})
	_, err = exp.Expand(doc)
	require.Error(t, err)
	te, ok := toolerr.As(err)
	require.True(t, ok)
	assert.Equal(t, toolerr.ResolutionError, te.Kind)
}
