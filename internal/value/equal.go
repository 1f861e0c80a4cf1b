package value

import (
	"sort"

	"github.com/google/go-cmp/cmp"
)

// exported is a plain-Go mirror of Value suitable for go-cmp, which cannot
// see across the unexported fields of Value itself.
type exported struct {
	Kind Kind
	Str  string
	Bool bool
	Num  float64
	Seq  []exported
	Map  map[string]exported
}

func (v Value) export() exported {
	e := exported{Kind: v.kind, Str: v.str, Bool: v.b, Num: v.num}
	if v.kind == KindSequence {
		e.Seq = make([]exported, len(v.seq))
		for i, c := range v.seq {
			e.Seq[i] = c.export()
		}
	}
	if v.kind == KindMapping {
		e.Map = make(map[string]exported, len(v.m))
		for k, c := range v.m {
			e.Map[k] = c.export()
		}
	}
	return e
}

// Equal reports deep structural equality, the semantics behind the
// "be exactly" assertion. Map key order never affects equality; sequence
// order does.
func Equal(a, b Value) bool {
	return cmp.Equal(a.export(), b.export())
}

// Diff renders a human-readable structural diff between a and b, or the
// empty string if they are equal.
func Diff(a, b Value) string {
	return cmp.Diff(a.export(), b.export())
}

// Contains implements the "contain" assertion: substring containment for
// strings, element/key containment for sequences and mappings.
func Contains(haystack, needle Value) bool {
	switch haystack.kind {
	case KindString:
		s, ok := needle.AsString()
		if !ok {
			return false
		}
		return containsSubstring(haystack.str, s)
	case KindSequence:
		for _, e := range haystack.seq {
			if Equal(e, needle) {
				return true
			}
		}
		return false
	case KindMapping:
		if k, ok := needle.AsString(); ok {
			_, present := haystack.m[k]
			return present
		}
		return false
	default:
		return false
	}
}

func containsSubstring(s, sub string) bool {
	return len(sub) == 0 || indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// SortedKeys returns a mapping's keys in sorted order, used by the snapshot
// renderer's stable YAML form.
func SortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
