package snapshot_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/snapshot"
	"toolproof/internal/value"
)

func TestRender_StringPrefixesEachLine(t *testing.T) {
	out, err := snapshot.Render(value.String("line one\nline two"))
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, snapshot.Sentinel))
	}
}

func TestRender_StructuredValueIsStableYAML(t *testing.T) {
	v := value.Mapping([]string{"b", "a"}, map[string]value.Value{
		"a": value.Number(1),
		"b": value.String("x"),
	})
	out, err := snapshot.Render(v)
	require.NoError(t, err)
	// keys must render sorted (a before b) regardless of insertion order
	aIdx := strings.Index(out, "a:")
	bIdx := strings.Index(out, "b:")
	assert.True(t, aIdx >= 0 && bIdx >= 0 && aIdx < bIdx)
}

func TestRender_WholeNumberDoesNotLoseDigits(t *testing.T) {
	out, err := snapshot.Render(value.Number(20))
	require.NoError(t, err)
	assert.Contains(t, out, "20")
}

func TestRender_FractionalNumberTrimsTrailingZeros(t *testing.T) {
	out, err := snapshot.Render(value.Number(3.10))
	require.NoError(t, err)
	assert.Contains(t, out, "3.1")
}

func TestRenderExtract_NoSentinelPrefix(t *testing.T) {
	out, err := snapshot.RenderExtract(value.String("plain text"))
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
	assert.False(t, strings.Contains(out, snapshot.Sentinel))
}
