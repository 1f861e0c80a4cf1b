package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"toolproof/internal/value"
)

func parseYAML(t *testing.T, s string) value.Value {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(s), &node))
	v, err := value.FromYAML(&node)
	require.NoError(t, err)
	return v
}

func TestFromYAML_Scalars(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		kind value.Kind
	}{
		{"string", "hello", value.KindString},
		{"bool", "true", value.KindBool},
		{"int", "42", value.KindNumber},
		{"float", "3.14", value.KindNumber},
		{"null", "null", value.KindNull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := parseYAML(t, tt.yaml)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestFromYAML_Sequence(t *testing.T) {
	v := parseYAML(t, "[1, 2, 3]")
	seq, ok := v.AsSequence()
	require.True(t, ok)
	require.Len(t, seq, 3)
	n, ok := seq[1].AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(2), n)
}

func TestFromYAML_Mapping(t *testing.T) {
	v := parseYAML(t, "a: 1\nb: 2\n")
	m, keys, ok := v.AsMapping()
	require.True(t, ok)
	assert.Len(t, m, 2)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestEqual(t *testing.T) {
	a := parseYAML(t, "a: 1\nb: [1, 2]\n")
	b := parseYAML(t, "b: [1, 2]\na: 1\n")
	assert.True(t, value.Equal(a, b))

	c := parseYAML(t, "b: [2, 1]\na: 1\n")
	assert.False(t, value.Equal(a, c), "sequence order should matter")
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, value.String("").IsEmpty())
	assert.False(t, value.String("x").IsEmpty())
	assert.True(t, value.Sequence(nil).IsEmpty())
	assert.False(t, value.Number(0).IsEmpty())
}

func TestContains_String(t *testing.T) {
	hay := value.String("the quick brown fox")
	assert.True(t, value.Contains(hay, value.String("quick")))
	assert.False(t, value.Contains(hay, value.String("slow")))
}

func TestContains_Sequence(t *testing.T) {
	hay := parseYAML(t, "[1, 2, 3]")
	assert.True(t, value.Contains(hay, value.Number(2)))
	assert.False(t, value.Contains(hay, value.Number(9)))
}

func TestContains_Mapping(t *testing.T) {
	hay := parseYAML(t, "a: 1\nb: 2\n")
	assert.True(t, value.Contains(hay, value.String("a")))
	assert.False(t, value.Contains(hay, value.String("z")))
}
