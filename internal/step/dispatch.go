package step

import (
	"fmt"
	"sort"
	"strings"
)

// Bound is the outcome of successfully matching a sentence against a
// Template: the hole values resolved either from inline quoted tokens or
// from the sibling YAML map.
type Bound struct {
	Template Template
	Values   map[string]string // raw text; placeholder substitution happens later
}

// Candidate pairs a template with an opaque handler key, so the dispatcher
// can be reused across instructions, retrievals and assertions without
// depending on the registry package.
type Candidate struct {
	Template Template
	Key      string
}

// Unresolved is returned when no candidate template matches; it lists the
// closest templates by literal overlap, per the StepUnresolved contract.
type Unresolved struct {
	Sentence string
	Closest  []string
}

func (u *Unresolved) Error() string {
	return fmt.Sprintf("no handler matches %q (closest: %s)", u.Sentence, strings.Join(u.Closest, "; "))
}

// Resolve finds the best matching candidate for sentence given the sibling
// YAML keys available to satisfy holes lacking an inline quoted token.
// Ambiguity resolution: fewest holes wins; ties broken by longest total
// literal length; further ties broken by registration order (the order
// candidates are passed in), which is the documented deterministic
// tiebreak for this implementation.
func Resolve(sentence string, siblingKeys map[string]string, candidates []Candidate) (Candidate, Bound, error) {
	type match struct {
		cand  Candidate
		bound Bound
	}
	var matches []match
	for _, c := range candidates {
		if bound, ok := tryMatch(sentence, siblingKeys, c.Template); ok {
			matches = append(matches, match{cand: c, bound: bound})
		}
	}
	if len(matches) == 0 {
		return Candidate{}, Bound{}, &Unresolved{Sentence: sentence, Closest: closest(sentence, candidates)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		hi, hj := matches[i].cand.Template.HoleCount(), matches[j].cand.Template.HoleCount()
		if hi != hj {
			return hi < hj
		}
		li, lj := matches[i].cand.Template.LiteralLength(), matches[j].cand.Template.LiteralLength()
		return li > lj
	})
	return matches[0].cand, matches[0].bound, nil
}

// tryMatch attempts to match sentence against t. Literal segments must
// occur in order as substrings; a Hole is satisfied by an inline quoted
// token occupying the gap between surrounding literals, or else by a key
// in siblingKeys matching the hole's name.
func tryMatch(sentence string, siblingKeys map[string]string, t Template) (Bound, bool) {
	values := make(map[string]string)
	pos := 0
	for i, seg := range t.Segments {
		switch seg.Kind {
		case Literal:
			idx := strings.Index(sentence[pos:], seg.Text)
			if idx < 0 {
				return Bound{}, false
			}
			pos += idx + len(seg.Text)
		case Hole:
			// Determine the next literal (if any) to bound the search window.
			nextLitStart := len(sentence)
			if i+1 < len(t.Segments) && t.Segments[i+1].Kind == Literal {
				if idx := strings.Index(sentence[pos:], t.Segments[i+1].Text); idx >= 0 {
					nextLitStart = pos + idx
				}
			}
			gap := strings.TrimSpace(sentence[pos:nextLitStart])
			if q, ok := unquote(gap); ok {
				values[seg.Text] = q
				pos = nextLitStart
				continue
			}
			if v, ok := siblingKeys[seg.Text]; ok {
				values[seg.Text] = v
				continue
			}
			return Bound{}, false
		}
	}
	return Bound{Template: t, Values: values}, true
}

// Match attempts to match sentence against a single template, exported for
// callers (macro expansion) that need to test one template at a time
// rather than running full dispatcher resolution.
func Match(sentence string, siblingKeys map[string]string, t Template) (Bound, bool) {
	return tryMatch(sentence, siblingKeys, t)
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1], true
		}
	}
	return "", false
}

// closest ranks candidate templates by literal-text overlap with sentence,
// for the diagnostic message attached to StepUnresolved.
func closest(sentence string, candidates []Candidate) []string {
	type scored struct {
		src   string
		score int
	}
	var ranked []scored
	for _, c := range candidates {
		score := 0
		for _, seg := range c.Template.Segments {
			if seg.Kind == Literal && strings.Contains(sentence, strings.TrimSpace(seg.Text)) {
				score += len(seg.Text)
			}
		}
		ranked = append(ranked, scored{src: c.Template.Source, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	n := 3
	if len(ranked) < n {
		n = len(ranked)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].src
	}
	return out
}
