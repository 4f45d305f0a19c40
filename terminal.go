package ezpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// Matcher is one node of a grammar's matcher tree. match is given the
// cursor, the per-parse state and the ambient atomicity, and returns the
// advanced cursor and the resulting node. A failed match returns the
// cursor it was given and has recorded why in the tracker.
type Matcher interface {
	fmt.Stringer
	match(pos Position, st *state, atomic bool) (Position, *Node, bool)
}

type literal struct {
	text string
}

// Literal matches s exactly.
func Literal(s string) Matcher {
	return &literal{text: s}
}

func (m *literal) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	next, ok := pos.MatchLiteral(m.text)
	if !ok {
		st.tracker.RecordLiteral(m.text, pos.divergence(m.text))
		return pos, nil, false
	}
	return next, &Node{Kind: KindLiteral, Span: pos.SpanTo(next)}, true
}

func (m *literal) String() string {
	return strconv.Quote(m.text)
}

type insensitive struct {
	text string
}

// Insensitive matches s ignoring case. The node's text is what the input
// actually contained.
func Insensitive(s string) Matcher {
	return &insensitive{text: s}
}

func (m *insensitive) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	next, _, ok := pos.MatchInsensitive(m.text)
	if !ok {
		st.tracker.RecordFail(ErrUnmatchedLiteral, m.String(), pos)
		return pos, nil, false
	}
	return next, &Node{Kind: KindInsensitive, Span: pos.SpanTo(next)}, true
}

func (m *insensitive) String() string {
	return "^" + strconv.Quote(m.text)
}

type charRange struct {
	min, max rune
}

// CharRange matches one character between min and max inclusive.
func CharRange(min, max rune) Matcher {
	return &charRange{min: min, max: max}
}

func (m *charRange) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	next, r, ok := pos.MatchRange(m.min, m.max)
	if !ok {
		st.tracker.RecordFail(ErrUnmatchedCharRange, m.String(), pos)
		return pos, nil, false
	}
	return next, &Node{Kind: KindRange, Span: pos.SpanTo(next), Char: r}, true
}

func (m *charRange) String() string {
	if m.min == m.max {
		return strconv.QuoteRune(m.min)
	}
	return fmt.Sprintf("%s..%s", strconv.QuoteRune(m.min), strconv.QuoteRune(m.max))
}

type anyChar struct{}

// Any matches any one character. It fails only at the end of input.
func Any() Matcher {
	return anyChar{}
}

func (anyChar) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	next, r, ok := pos.MatchAny()
	if !ok {
		st.tracker.RecordFail(ErrUnmatchedCharRange, "any character", pos)
		return pos, nil, false
	}
	return next, &Node{Kind: KindAny, Span: pos.SpanTo(next), Char: r}, true
}

func (anyChar) String() string {
	return "ANY"
}

type startOfInput struct{}

// StartOfInput matches the empty string at offset 0.
func StartOfInput() Matcher {
	return startOfInput{}
}

func (startOfInput) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	if !pos.AtStart() {
		st.tracker.RecordFail(ErrUnmatchedBuiltin, "start of input", pos)
		return pos, nil, false
	}
	return pos, &Node{Kind: KindStartOfInput, Span: pos.SpanTo(pos)}, true
}

func (startOfInput) String() string {
	return "SOI"
}

type endOfInput struct{}

// EndOfInput matches the empty string at the end of input.
func EndOfInput() Matcher {
	return endOfInput{}
}

func (endOfInput) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	if !pos.AtEnd() {
		st.tracker.RecordFail(ErrUnmatchedBuiltin, "end of input", pos)
		return pos, nil, false
	}
	return pos, &Node{Kind: KindEndOfInput, Span: pos.SpanTo(pos)}, true
}

func (endOfInput) String() string {
	return "EOI"
}

type newline struct{}

// Newline matches "\r\n", "\n" or "\r", tried in that order.
func Newline() Matcher {
	return newline{}
}

var newlines = [...]string{"\r\n", "\n", "\r"}

func (newline) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	for _, nl := range newlines {
		if next, ok := pos.MatchLiteral(nl); ok {
			return next, &Node{Kind: KindNewline, Span: pos.SpanTo(next)}, true
		}
	}
	st.tracker.RecordFail(ErrUnmatchedBuiltin, "newline", pos)
	return pos, nil, false
}

func (newline) String() string {
	return "NEWLINE"
}

type skip struct {
	delimiters []string
}

// Skip consumes input up to, not including, the first of delimiters.
func Skip(delimiters ...string) Matcher {
	return &skip{delimiters: delimiters}
}

func (m *skip) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	next, ok := pos.SkipUntil(m.delimiters)
	if !ok {
		st.tracker.RecordFail(ErrUnmatchedBuiltin, m.String(), pos.advance(len(pos.Remaining())))
		return pos, nil, false
	}
	return next, &Node{Kind: KindSkip, Span: pos.SpanTo(next)}, true
}

func (m *skip) String() string {
	quoted := make([]string, len(m.delimiters))
	for i, d := range m.delimiters {
		quoted[i] = strconv.Quote(d)
	}
	return "SKIP(" + strings.Join(quoted, " | ") + ")"
}
