package step_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/step"
)

func TestParse_LiteralsAndHoles(t *testing.T) {
	tpl := step.Parse("I have a {filename} file with the content {contents}")
	require.Len(t, tpl.Segments, 4)
	assert.Equal(t, step.Literal, tpl.Segments[0].Kind)
	assert.Equal(t, "I have a ", tpl.Segments[0].Text)
	assert.Equal(t, step.Hole, tpl.Segments[1].Kind)
	assert.Equal(t, "filename", tpl.Segments[1].Text)
	assert.Equal(t, step.Literal, tpl.Segments[2].Kind)
	assert.Equal(t, step.Hole, tpl.Segments[3].Kind)
	assert.Equal(t, "contents", tpl.Segments[3].Text)
}

func TestParse_NoHoles(t *testing.T) {
	tpl := step.Parse("the console has no errors")
	require.Len(t, tpl.Segments, 1)
	assert.Equal(t, step.Literal, tpl.Segments[0].Kind)
}

func TestHoleCountAndLiteralLength(t *testing.T) {
	tpl := step.Parse("I click {selector}")
	assert.Equal(t, 1, tpl.HoleCount())
	assert.Equal(t, len("I click "), tpl.LiteralLength())
}

func TestHoleNames(t *testing.T) {
	tpl := step.Parse("{a} and {b} and {a}")
	assert.Equal(t, []string{"a", "b", "a"}, tpl.HoleNames())
}

func TestTemplateEqual(t *testing.T) {
	a := step.Parse("I click {selector}")
	b := step.Parse("I click {selector}")
	c := step.Parse("I click {target}")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "hole names differ")
}
