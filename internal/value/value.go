// Package value implements the recursive data model shared by retrievals,
// assertions and the snapshot engine: a structure isomorphic to YAML
// scalars, sequences and mappings, with its own equality and diff.
package value

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindNumber
	KindSequence
	KindMapping
)

// Value is a recursive structure isomorphic to YAML scalars, sequences and
// mappings. The zero Value is KindNull.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	seq  []Value
	m    map[string]Value
	keys []string // insertion order, for stable rendering
}

func Null() Value                { return Value{kind: KindNull} }
func String(s string) Value      { return Value{kind: KindString, str: s} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Number(f float64) Value     { return Value{kind: KindNumber, num: f} }
func Sequence(vs []Value) Value  { return Value{kind: KindSequence, seq: vs} }

// Mapping builds a mapping value preserving the given key order.
func Mapping(keys []string, m map[string]Value) Value {
	ks := make([]string, len(keys))
	copy(ks, keys)
	mm := make(map[string]Value, len(m))
	for k, v := range m {
		mm[k] = v
	}
	return Value{kind: KindMapping, keys: ks, m: mm}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) AsSequence() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.seq, true
}

func (v Value) AsMapping() (map[string]Value, []string, bool) {
	if v.kind != KindMapping {
		return nil, nil, false
	}
	return v.m, v.keys, true
}

// IsEmpty reports whether v is the empty string, an empty sequence or an
// empty mapping, per the "be empty" assertion contract.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindSequence:
		return len(v.seq) == 0
	case KindMapping:
		return len(v.m) == 0
	default:
		return false
	}
}

// FromYAML converts a decoded yaml.Node into a Value.
func FromYAML(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromYAML(n.Content[0])
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	case yaml.SequenceNode:
		seq := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := FromYAML(c)
			if err != nil {
				return Value{}, err
			}
			seq = append(seq, v)
		}
		return Sequence(seq), nil
	case yaml.MappingNode:
		keys := make([]string, 0, len(n.Content)/2)
		m := make(map[string]Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i].Value
			v, err := FromYAML(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			keys = append(keys, k)
			m[k] = v
		}
		return Mapping(keys, m), nil
	case yaml.AliasNode:
		return FromYAML(n.Alias)
	default:
		return Null(), fmt.Errorf("value: unsupported yaml node kind %v", n.Kind)
	}
}

func scalarFromYAML(n *yaml.Node) (Value, error) {
	switch n.Tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	default:
		return String(n.Value), nil
	}
}

// FromJSON converts a value produced by encoding/json.Unmarshal(..., &any)
// into a Value. Used for browser evaluation results.
func FromJSON(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case string:
		return String(t)
	case []interface{}:
		seq := make([]Value, 0, len(t))
		for _, e := range t {
			seq = append(seq, FromJSON(e))
		}
		return Sequence(seq)
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(map[string]Value, len(t))
		for k, v := range t {
			m[k] = FromJSON(v)
		}
		return Mapping(keys, m)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// String renders v as a human-readable one-line form, used in error messages.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, e := range v.seq {
			parts[i] = e.String()
		}
		return fmt.Sprintf("%v", parts)
	case KindMapping:
		return fmt.Sprintf("%v", v.m)
	default:
		return ""
	}
}
