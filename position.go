package ezpeg

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Position is a cursor into the input of a single parse. Positions are only
// made by Start and by advancing another Position, so every Position seen
// during one parse refers to the same input.
type Position struct {
	input  string
	offset int
}

// Start returns the Position at the beginning of input.
func Start(input string) Position {
	return Position{input: input}
}

func (p Position) Offset() int {
	return p.offset
}

func (p Position) AtStart() bool {
	return p.offset == 0
}

func (p Position) AtEnd() bool {
	return p.offset >= len(p.input)
}

// Remaining returns the unconsumed input.
func (p Position) Remaining() string {
	return p.input[p.offset:]
}

func (p Position) advance(n int) Position {
	p.offset += n
	return p
}

// MatchLiteral advances past s when the remaining input starts with it.
func (p Position) MatchLiteral(s string) (Position, bool) {
	if strings.HasPrefix(p.input[p.offset:], s) {
		return p.advance(len(s)), true
	}
	return p, false
}

// divergence returns the position of the first character where s and the
// remaining input differ.
func (p Position) divergence(s string) Position {
	rest := p.input[p.offset:]
	n := 0
	for n < len(s) && n < len(rest) {
		want, w1 := utf8.DecodeRuneInString(s[n:])
		got, w2 := utf8.DecodeRuneInString(rest[n:])
		if want != got || w1 != w2 {
			break
		}
		n += w1
	}
	return p.advance(n)
}

// MatchInsensitive matches s ignoring case and returns the text that was
// actually consumed, which may differ in case from s.
func (p Position) MatchInsensitive(s string) (Position, string, bool) {
	fold := cases.Fold()
	rest := p.input[p.offset:]
	n := 0
	for _, want := range s {
		if n >= len(rest) {
			return p, "", false
		}
		got, w := utf8.DecodeRuneInString(rest[n:])
		if got == utf8.RuneError && w <= 1 {
			return p, "", false
		}
		if got != want && fold.String(string(got)) != fold.String(string(want)) {
			return p, "", false
		}
		n += w
	}
	return p.advance(n), rest[:n], true
}

// MatchRange consumes one character in the inclusive range [min, max].
func (p Position) MatchRange(min, max rune) (Position, rune, bool) {
	return p.matchCharBy(func(r rune) bool {
		return min <= r && r <= max
	})
}

// MatchAny consumes one character.
func (p Position) MatchAny() (Position, rune, bool) {
	return p.matchCharBy(func(rune) bool { return true })
}

func (p Position) matchCharBy(pred func(rune) bool) (Position, rune, bool) {
	if p.AtEnd() {
		return p, 0, false
	}
	r, w := utf8.DecodeRuneInString(p.input[p.offset:])
	if r == utf8.RuneError && w <= 1 {
		return p, 0, false
	}
	if !pred(r) {
		return p, 0, false
	}
	return p.advance(w), r, true
}

// SkipUntil advances one character at a time until the remaining input
// starts with one of delimiters. The delimiter is not consumed. It fails
// when the end of input is reached first.
func (p Position) SkipUntil(delimiters []string) (Position, bool) {
	q := p
	for {
		rest := q.input[q.offset:]
		for _, d := range delimiters {
			if strings.HasPrefix(rest, d) {
				return q, true
			}
		}
		if q.AtEnd() {
			return p, false
		}
		_, w := utf8.DecodeRuneInString(rest)
		q = q.advance(w)
	}
}

// SpanTo returns the span from p to a later position of the same input.
func (p Position) SpanTo(end Position) Span {
	if end.offset < p.offset {
		return Span{input: p.input, start: end.offset, end: p.offset}
	}
	return Span{input: p.input, start: p.offset, end: end.offset}
}

// LineCol returns the 1-based line and column of p. Columns count
// characters, not bytes.
func (p Position) LineCol() (int, int) {
	return lineCol(p.input, p.offset)
}

func (p Position) String() string {
	line, col := p.LineCol()
	return fmt.Sprintf("%d:%d", line, col)
}

func lineCol(input string, offset int) (int, int) {
	if offset > len(input) {
		offset = len(input)
	}
	line, col := 1, 1
	for i, r := range input[:offset] {
		switch {
		case r == '\n':
			line++
			col = 1
		case r == '\r':
			if i+1 < len(input) && input[i+1] == '\n' {
				continue
			}
			line++
			col = 1
		default:
			col++
		}
	}
	return line, col
}

// Span is a range of the input, from start (inclusive) to end (exclusive).
type Span struct {
	input      string
	start, end int
}

func (s Span) Start() Position {
	return Position{input: s.input, offset: s.start}
}

func (s Span) End() Position {
	return Position{input: s.input, offset: s.end}
}

func (s Span) Len() int {
	return s.end - s.start
}

// String returns the covered text.
func (s Span) String() string {
	return s.input[s.start:s.end]
}

func (s Span) GoString() string {
	return fmt.Sprintf("Span{%q, %d, %d}", s.String(), s.start, s.end)
}
