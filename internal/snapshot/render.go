// Package snapshot implements the snapshot engine: rendering a retrieval's
// Value into the stored textual form, comparing it against
// snapshot_content, and — in interactive mode — prompting to accept a new
// rendering and rewriting the source YAML file in place.
package snapshot

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"toolproof/internal/value"
)

// Sentinel is the per-line prefix §4.4/§6 specify: U+254E.
const Sentinel = "╎"

// Render produces the stored textual form of v: strings are split on \n
// with each line prefixed by Sentinel; structured values are first
// serialised to a stable YAML form (sorted map keys, block style) and then
// prefixed identically.
func Render(v value.Value) (string, error) {
	text, err := textForm(v)
	if err != nil {
		return "", err
	}
	text = norm.NFC.String(text)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = Sentinel + l
	}
	return strings.Join(lines, "\n"), nil
}

// RenderExtract produces the same textual form as Render but without the
// sentinel prefix, the Extract step's unverified side-output contract.
func RenderExtract(v value.Value) (string, error) {
	text, err := textForm(v)
	if err != nil {
		return "", err
	}
	return norm.NFC.String(text), nil
}

func textForm(v value.Value) (string, error) {
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	node, err := stableNode(v)
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// stableNode builds a yaml.Node tree with sorted mapping keys and block
// (never flow) style, the "stable YAML form" the snapshot contract
// requires.
func stableNode(v value.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case value.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case value.KindString:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}, nil
	case value.KindBool:
		b, _ := v.AsBool()
		s := "false"
		if b {
			s = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: s}, nil
	case value.KindNumber:
		n, _ := v.AsNumber()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatNumber(n)}, nil
	case value.KindSequence:
		seq, _ := v.AsSequence()
		node := &yaml.Node{Kind: yaml.SequenceNode, Style: 0}
		for _, e := range seq {
			child, err := stableNode(e)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case value.KindMapping:
		m, _, _ := v.AsMapping()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		node := &yaml.Node{Kind: yaml.MappingNode, Style: 0}
		for _, k := range keys {
			child, err := stableNode(m[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return node, nil
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
}

func formatNumber(f float64) string {
	s := yamlFloat(f)
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}

func yamlFloat(f float64) string {
	node := yaml.Node{}
	_ = node.Encode(f)
	if node.Value != "" {
		return node.Value
	}
	return "0"
}
