// Package step implements the sentence grammar described for the step
// dispatcher: segmenting a handler's registered sentence into literal and
// hole segments, and matching a step's runtime sentence against the
// registered templates.
package step

import (
	"strings"
)

// SegmentKind discriminates a Literal from a Hole within a Template.
type SegmentKind int

const (
	Literal SegmentKind = iota
	Hole
)

// Segment is one piece of a parsed sentence template.
type Segment struct {
	Kind SegmentKind
	Text string // literal text, or the hole's name
}

// Template is a sequence of Literal and Hole segments, parsed once at
// registration time from a sentence like:
//
//	I have a {filename} file with the content {contents}
//
// which yields: Literal("I have a "), Hole("filename"),
// Literal(" file with the content "), Hole("contents").
type Template struct {
	Source   string
	Segments []Segment
}

// Parse segments a registration-time sentence into a Template. Braces
// delimit hole names; everything else is literal text.
func Parse(sentence string) Template {
	var segs []Segment
	var lit strings.Builder
	i := 0
	for i < len(sentence) {
		if sentence[i] == '{' {
			if end := strings.IndexByte(sentence[i:], '}'); end >= 0 {
				if lit.Len() > 0 {
					segs = append(segs, Segment{Kind: Literal, Text: lit.String()})
					lit.Reset()
				}
				name := sentence[i+1 : i+end]
				segs = append(segs, Segment{Kind: Hole, Text: name})
				i += end + 1
				continue
			}
		}
		lit.WriteByte(sentence[i])
		i++
	}
	if lit.Len() > 0 {
		segs = append(segs, Segment{Kind: Literal, Text: lit.String()})
	}
	return Template{Source: sentence, Segments: segs}
}

// HoleCount returns the number of Hole segments, used by the dispatcher's
// ambiguity resolution (fewest holes wins).
func (t Template) HoleCount() int {
	n := 0
	for _, s := range t.Segments {
		if s.Kind == Hole {
			n++
		}
	}
	return n
}

// LiteralLength returns the total length of literal text, used as the
// dispatcher's tiebreak (longest literal length wins).
func (t Template) LiteralLength() int {
	n := 0
	for _, s := range t.Segments {
		if s.Kind == Literal {
			n += len(s.Text)
		}
	}
	return n
}

// HoleNames returns the names of this template's holes in order.
func (t Template) HoleNames() []string {
	var names []string
	for _, s := range t.Segments {
		if s.Kind == Hole {
			names = append(names, s.Text)
		}
	}
	return names
}

// Equal reports template equality by segment list, the invariant that
// backs "sentence templates registered in the dispatcher are pairwise
// distinct".
func (t Template) Equal(o Template) bool {
	if len(t.Segments) != len(o.Segments) {
		return false
	}
	for i := range t.Segments {
		if t.Segments[i] != o.Segments[i] {
			return false
		}
	}
	return true
}
