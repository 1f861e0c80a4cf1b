package testdoc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SetSnapshotContent rewrites stepNode's snapshot_content key (inserting it
// if absent) to rendered, stored as a literal block scalar, then writes the
// whole document back to disk. Every other node — comments, key order,
// sibling steps — is left untouched, since only stepNode's own Content
// slice is mutated before re-marshalling the retained document root.
func (d *Document) SetSnapshotContent(stepNode *yaml.Node, rendered string) error {
	if stepNode == nil || stepNode.Kind != yaml.MappingNode {
		return fmt.Errorf("snapshot step has no backing YAML node to rewrite")
	}

	valueNode := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: rendered,
		Style: yaml.LiteralStyle,
	}

	for i := 0; i+1 < len(stepNode.Content); i += 2 {
		if stepNode.Content[i].Value == "snapshot_content" {
			stepNode.Content[i+1] = valueNode
			return d.save()
		}
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "snapshot_content"}
	stepNode.Content = append(stepNode.Content, keyNode, valueNode)
	return d.save()
}

func (d *Document) save() error {
	out, err := yaml.Marshal(d.root)
	if err != nil {
		return fmt.Errorf("re-marshalling %s: %w", d.Path, err)
	}
	if err := os.WriteFile(d.Path, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", d.Path, err)
	}
	return nil
}
