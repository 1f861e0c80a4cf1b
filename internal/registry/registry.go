// Package registry is the global table of named Instruction, Retrieval and
// Assertion handlers keyed by their sentence template, matched by the
// internal/step dispatcher, which prefers the fewest holes, then the
// longest literal text, then registration order. The registry is built
// once at startup from explicit registration calls and never mutated
// afterwards, the "no runtime monkey-patching" design note.
package registry

import (
	"strconv"

	"toolproof/internal/runctx"
	"toolproof/internal/step"
	"toolproof/internal/value"
)

// Instruction mutates ctx and the world; it returns only an error.
type Instruction func(ctx *runctx.Context, args map[string]string) error

// Retrieval is side-effect-free by contract and returns a Value.
type Retrieval func(ctx *runctx.Context, args map[string]string) (value.Value, error)

// Assertion compares an actual value against an optional expected value.
type Assertion func(actual value.Value, expected *value.Value) error

type entry[H any] struct {
	template step.Template
	handler  H
	browser  bool
}

// Registry holds the three independent handler tables. Register* appends
// without checking for an equal template already in the table; among
// equal templates the dispatcher picks the one registered first.
type Registry struct {
	instructions []entry[Instruction]
	retrievals   []entry[Retrieval]
	assertions   []entry[Assertion]
}

func New() *Registry {
	return &Registry{}
}

func (r *Registry) RegisterInstruction(sentence string, h Instruction) {
	r.instructions = append(r.instructions, entry[Instruction]{template: step.Parse(sentence), handler: h})
}

// RegisterBrowserInstruction registers h like RegisterInstruction, additionally
// tagging the template so UsesBrowser can report which tests need a page.
func (r *Registry) RegisterBrowserInstruction(sentence string, h Instruction) {
	r.instructions = append(r.instructions, entry[Instruction]{template: step.Parse(sentence), handler: h, browser: true})
}

func (r *Registry) RegisterRetrieval(sentence string, h Retrieval) {
	r.retrievals = append(r.retrievals, entry[Retrieval]{template: step.Parse(sentence), handler: h})
}

// RegisterBrowserRetrieval registers h like RegisterRetrieval, tagged browser.
func (r *Registry) RegisterBrowserRetrieval(sentence string, h Retrieval) {
	r.retrievals = append(r.retrievals, entry[Retrieval]{template: step.Parse(sentence), handler: h, browser: true})
}

func (r *Registry) RegisterAssertion(sentence string, h Assertion) {
	r.assertions = append(r.assertions, entry[Assertion]{template: step.Parse(sentence), handler: h})
}

func candidatesOf[H any](entries []entry[H]) []step.Candidate {
	out := make([]step.Candidate, len(entries))
	for i, e := range entries {
		out[i] = step.Candidate{Template: e.template, Key: ""}
	}
	return out
}

// ResolveInstruction dispatches sentence against the instruction table.
func (r *Registry) ResolveInstruction(sentence string, sibling map[string]string) (Instruction, step.Bound, error) {
	cands := candidatesOf(r.instructions)
	for i := range cands {
		cands[i].Key = indexKey(i)
	}
	chosen, bound, err := step.Resolve(sentence, sibling, cands)
	if err != nil {
		return nil, step.Bound{}, err
	}
	return r.instructions[mustIndex(chosen.Key)].handler, bound, nil
}

func (r *Registry) ResolveRetrieval(sentence string, sibling map[string]string) (Retrieval, step.Bound, error) {
	cands := candidatesOf(r.retrievals)
	for i := range cands {
		cands[i].Key = indexKey(i)
	}
	chosen, bound, err := step.Resolve(sentence, sibling, cands)
	if err != nil {
		return nil, step.Bound{}, err
	}
	return r.retrievals[mustIndex(chosen.Key)].handler, bound, nil
}

func (r *Registry) ResolveAssertion(sentence string, sibling map[string]string) (Assertion, step.Bound, error) {
	cands := candidatesOf(r.assertions)
	for i := range cands {
		cands[i].Key = indexKey(i)
	}
	chosen, bound, err := step.Resolve(sentence, sibling, cands)
	if err != nil {
		return nil, step.Bound{}, err
	}
	return r.assertions[mustIndex(chosen.Key)].handler, bound, nil
}

// UsesBrowser reports whether sentence resolves (as an instruction or a
// retrieval, including the retrieval half of a "{x} should {y}" pair) to a
// browser-tagged handler. Unresolved sentences report false; the caller
// (scheduler) only uses this as a best-effort hint to skip browser startup
// for suites that never touch it.
func (r *Registry) UsesBrowser(sentence string, sibling map[string]string) bool {
	for _, e := range r.instructions {
		if bound, ok := step.Match(sentence, sibling, e.template); ok && e.browser {
			_ = bound
			return true
		}
	}
	for _, e := range r.retrievals {
		if bound, ok := step.Match(sentence, sibling, e.template); ok && e.browser {
			_ = bound
			return true
		}
	}
	return false
}

func indexKey(i int) string { return strconv.Itoa(i) }

func mustIndex(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
