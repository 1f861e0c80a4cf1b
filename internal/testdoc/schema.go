// Package testdoc implements the test and macro file schema: YAML
// documents discovered under a root, decoded at the yaml.Node level so the
// snapshot engine can later rewrite a single key in place while preserving
// comments and the order of every other node.
package testdoc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"toolproof/internal/platform"
)

// Kind discriminates a Step's variant, matching the tagged Step union of
// the data model.
type Kind int

const (
	KindInstruction Kind = iota
	KindRetrievalAssertion
	KindSnapshot
	KindExtract
	KindReference
	KindMacroInvocation
)

var reservedKeys = map[string]bool{
	"step": true, "snapshot": true, "extract": true, "ref": true, "macro": true,
	"snapshot_content": true, "extract_location": true, "platforms": true,
}

// Step is one entry of a document's steps list.
type Step struct {
	Kind              Kind
	Sentence          string // Instruction, MacroInvocation
	RetrievalSentence string // RetrievalAssertion, Snapshot, Extract
	AssertionSentence string // RetrievalAssertion
	Values            map[string]string
	SnapshotContent   *string // Snapshot only; nil means "no stored snapshot yet"
	ExtractLocation   string  // Extract only
	RefPath           string  // Reference only
	Platforms         []platform.Platform

	// PlaceholderOverlay carries macro-argument bindings active for this
	// step after macro expansion; inner macro invocations shadow outer ones.
	PlaceholderOverlay map[string]string

	// Node backs this step's YAML mapping for Snapshot steps, so interactive
	// acceptance can rewrite snapshot_content in place. Nil for bare-string
	// steps (which can never carry snapshot_content).
	Node *yaml.Node
}

// Document is a parsed test or macro file.
type Document struct {
	Path          string
	Name          string
	Type          string // "test" or "reference"; empty means "test"
	MacroTemplate string // set when this file declares `macro:` instead of `name:`
	Platforms     []platform.Platform
	Steps         []Step

	root *yaml.Node // DocumentNode, retained for rewrite
}

// IsReference reports whether this document is type: reference, which is
// parsed for macro/reference expansion but never scheduled.
func (d *Document) IsReference() bool { return d.Type == "reference" }

// IsMacro reports whether this file declared a macro: template.
func (d *Document) IsMacro() bool { return d.MacroTemplate != "" }

// Load reads and parses a test or macro file from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
	}
	doc := &Document{Path: path, root: &root}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%s: empty document", path)
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: top-level document must be a mapping", path)
	}

	var stepsNode *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		val := mapping.Content[i+1]
		switch key {
		case "name":
			doc.Name = val.Value
		case "macro":
			doc.MacroTemplate = val.Value
		case "type":
			doc.Type = val.Value
		case "platforms":
			doc.Platforms = platform.Parse(scalarList(val))
		case "steps":
			stepsNode = val
		}
	}

	if doc.Name == "" && doc.MacroTemplate == "" {
		return nil, fmt.Errorf("%s: document requires name (or macro)", path)
	}
	if stepsNode == nil {
		return nil, fmt.Errorf("%s: document requires steps", path)
	}

	steps, err := parseSteps(stepsNode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Steps = steps
	return doc, nil
}

func parseSteps(seq *yaml.Node) ([]Step, error) {
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("steps must be a sequence")
	}
	out := make([]Step, 0, len(seq.Content))
	for _, item := range seq.Content {
		s, err := parseStep(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func parseStep(item *yaml.Node) (Step, error) {
	if item.Kind == yaml.ScalarNode {
		return Step{Kind: KindInstruction, Sentence: item.Value, Values: map[string]string{}}, nil
	}
	if item.Kind != yaml.MappingNode {
		return Step{}, fmt.Errorf("step must be a string or a mapping")
	}

	fields := map[string]*yaml.Node{}
	for i := 0; i+1 < len(item.Content); i += 2 {
		fields[item.Content[i].Value] = item.Content[i+1]
	}

	values := map[string]string{}
	for i := 0; i+1 < len(item.Content); i += 2 {
		k := item.Content[i].Value
		if reservedKeys[k] {
			continue
		}
		values[k] = nodeToRaw(item.Content[i+1])
	}

	var platforms []platform.Platform
	if pn, ok := fields["platforms"]; ok {
		platforms = platform.Parse(scalarList(pn))
	}

	switch {
	case fields["ref"] != nil:
		return Step{Kind: KindReference, RefPath: fields["ref"].Value, Platforms: platforms, Values: values}, nil
	case fields["macro"] != nil:
		return Step{Kind: KindMacroInvocation, Sentence: fields["macro"].Value, Platforms: platforms, Values: values}, nil
	case fields["snapshot"] != nil:
		var content *string
		if cn, ok := fields["snapshot_content"]; ok {
			c := cn.Value
			content = &c
		}
		return Step{
			Kind: KindSnapshot, RetrievalSentence: fields["snapshot"].Value,
			SnapshotContent: content, Platforms: platforms, Values: values, Node: item,
		}, nil
	case fields["extract"] != nil:
		loc := ""
		if ln, ok := fields["extract_location"]; ok {
			loc = ln.Value
		}
		return Step{
			Kind: KindExtract, RetrievalSentence: fields["extract"].Value,
			ExtractLocation: loc, Platforms: platforms, Values: values,
		}, nil
	case fields["step"] != nil:
		return Step{Kind: KindInstruction, Sentence: fields["step"].Value, Platforms: platforms, Values: values}, nil
	default:
		return Step{}, fmt.Errorf("step mapping has no recognised discriminating key")
	}
}

func nodeToRaw(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return ""
	}
	return string(out)
}

func scalarList(n *yaml.Node) []string {
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}
	}
	out := make([]string, 0, len(n.Content))
	for _, c := range n.Content {
		out = append(out, c.Value)
	}
	return out
}
