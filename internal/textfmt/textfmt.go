// Package textfmt decides how prompt and option text is displayed.
//
// A value wrapped in a single pair of backticks is literal content and is
// never re-wrapped as prose. Literal content longer than BlockThreshold runes
// or spanning several lines is shown as a block; shorter literals are inline
// code. The raw value, delimiters included, stays the identity of an option.
package textfmt

import (
	"strings"
	"unicode/utf8"
)

// BlockThreshold is the rune length above which literal content is a block.
const BlockThreshold = 80

const delim = "`"

// Kind is a display category.
type Kind int

const (
	KindProse Kind = iota
	KindInline
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindBlock:
		return "block"
	}
	return "prose"
}

// Segment is classified text ready for rendering. For literal kinds Text
// has the delimiters removed.
type Segment struct {
	Kind Kind
	Text string
}

// IsLiteral reports whether the segment must be shown verbatim.
func (s Segment) IsLiteral() bool { return s.Kind != KindProse }

// Classify applies the detection rule to s.
func Classify(s string) Segment {
	inner, ok := unwrap(s)
	if !ok {
		return Segment{Kind: KindProse, Text: s}
	}
	if strings.Contains(inner, "\n") || utf8.RuneCountInString(inner) > BlockThreshold {
		return Segment{Kind: KindBlock, Text: inner}
	}
	return Segment{Kind: KindInline, Text: inner}
}

func unwrap(s string) (string, bool) {
	if len(s) < 2 || !strings.HasPrefix(s, delim) || !strings.HasSuffix(s, delim) {
		return "", false
	}
	inner := s[1 : len(s)-1]
	if strings.Contains(inner, delim) {
		return "", false
	}
	return inner, true
}
