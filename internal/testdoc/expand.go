package testdoc

import (
	"fmt"
	"path/filepath"

	"toolproof/internal/platform"
	"toolproof/internal/step"
	"toolproof/internal/toolerr"
)

// MaxMacroDepth is the nesting-depth cap for macro-inside-macro expansion;
// the data model requires at least 16.
const MaxMacroDepth = 32

// Expander materialises a document's steps into a flat sequence of
// concrete, non-reference, non-macro steps before the test state machine
// begins.
type Expander struct {
	macros   []*Document
	macroTpl []step.Template
	loaded   map[string]*Document
}

// NewExpander builds an expander over the given macro documents.
func NewExpander(macros []*Document) *Expander {
	e := &Expander{macros: macros, loaded: map[string]*Document{}}
	for _, m := range macros {
		e.macroTpl = append(e.macroTpl, step.Parse(m.MacroTemplate))
	}
	return e
}

// Expand materialises doc's steps, resolving Reference and MacroInvocation
// steps in place.
func (e *Expander) Expand(doc *Document) ([]Step, error) {
	chain := map[string]bool{absPath(doc.Path): true}
	return e.expandSteps(doc.Steps, chain, nil, 0)
}

func (e *Expander) expandSteps(steps []Step, chain map[string]bool, overlay map[string]string, depth int) ([]Step, error) {
	var out []Step
	for _, s := range steps {
		s.PlaceholderOverlay = mergeOverlay(overlay, s.PlaceholderOverlay)
		switch s.Kind {
		case KindReference:
			expanded, err := e.expandReference(s, chain, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		case KindMacroInvocation:
			expanded, err := e.expandMacro(s, chain, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

func (e *Expander) expandReference(s Step, chain map[string]bool, depth int) ([]Step, error) {
	path := absPath(s.RefPath)
	if chain[path] {
		return nil, toolerr.New(toolerr.ReferenceCycle, -1, fmt.Sprintf("reference cycle at %s", path))
	}
	doc, ok := e.loaded[path]
	if !ok {
		d, err := Load(s.RefPath)
		if err != nil {
			return nil, toolerr.Wrap(toolerr.ResolutionError, -1, "loading reference", err)
		}
		doc = d
		e.loaded[path] = doc
	}

	childChain := cloneChain(chain)
	childChain[path] = true
	inner, err := e.expandSteps(doc.Steps, childChain, s.PlaceholderOverlay, depth)
	if err != nil {
		return nil, err
	}
	for i := range inner {
		inner[i].Platforms = platform.Intersect(s.Platforms, inner[i].Platforms)
	}
	return inner, nil
}

func (e *Expander) expandMacro(s Step, chain map[string]bool, depth int) ([]Step, error) {
	if depth >= MaxMacroDepth {
		return nil, toolerr.New(toolerr.ResolutionError, -1, "macro nesting depth exceeded")
	}
	for i, tpl := range e.macroTpl {
		bound, ok := step.Match(s.Sentence, s.Values, tpl)
		if !ok {
			continue
		}
		macro := e.macros[i]
		overlay := mergeOverlay(s.PlaceholderOverlay, bound.Values)
		return e.expandSteps(macro.Steps, chain, overlay, depth+1)
	}
	return nil, toolerr.New(toolerr.ResolutionError, -1, fmt.Sprintf("macro not found for %q", s.Sentence))
}

func mergeOverlay(outer, inner map[string]string) map[string]string {
	if len(outer) == 0 && len(inner) == 0 {
		return nil
	}
	out := make(map[string]string, len(outer)+len(inner))
	for k, v := range outer {
		out[k] = v
	}
	for k, v := range inner {
		out[k] = v // inner (more deeply nested) bindings shadow outer ones
	}
	return out
}

func cloneChain(chain map[string]bool) map[string]bool {
	out := make(map[string]bool, len(chain)+1)
	for k, v := range chain {
		out[k] = v
	}
	return out
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
