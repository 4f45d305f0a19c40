package ezpeg

import (
	"fmt"
	"strings"
)

type push struct {
	inner Matcher
}

// Push matches inner and pushes the text it consumed onto the stack.
func Push(inner Matcher) Matcher {
	return &push{inner: inner}
}

func (m *push) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	next, node, ok := m.inner.match(pos, st, atomic)
	if !ok {
		return pos, nil, false
	}
	span := pos.SpanTo(next)
	st.stack.Push(span)
	return next, &Node{Kind: KindPush, Span: span, Children: []*Node{node}}, true
}

func (m *push) String() string {
	return "PUSH(" + m.inner.String() + ")"
}

// matchEntries matches the text of entries one after the other, without
// skipping anything in between.
func matchEntries(pos Position, st *state, entries []Span) (Position, bool) {
	for _, e := range entries {
		text := e.String()
		next, ok := pos.MatchLiteral(text)
		if !ok {
			st.tracker.RecordLiteral(text, pos.divergence(text))
			return pos, false
		}
		pos = next
	}
	return pos, true
}

type peek struct {
	pop bool
}

// Peek matches the text on top of the stack.
func Peek() Matcher {
	return peek{}
}

// Pop matches the text on top of the stack and then removes it. Nothing is
// removed when the match fails.
func Pop() Matcher {
	return peek{pop: true}
}

func (m peek) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	top, ok := st.stack.Peek()
	if !ok {
		st.tracker.RecordEmptyStack(pos)
		return pos, nil, false
	}
	next, ok := matchEntries(pos, st, []Span{top})
	if !ok {
		return pos, nil, false
	}
	kind := KindPeek
	if m.pop {
		st.stack.Pop()
		kind = KindPop
	}
	return next, &Node{Kind: kind, Span: pos.SpanTo(next)}, true
}

func (m peek) String() string {
	if m.pop {
		return "POP"
	}
	return "PEEK"
}

type peekAll struct {
	pop bool
}

// PeekAll matches every entry of the stack from top to bottom. An empty
// stack matches the empty string.
func PeekAll() Matcher {
	return peekAll{}
}

// PopAll is PeekAll followed by emptying the stack.
func PopAll() Matcher {
	return peekAll{pop: true}
}

func (m peekAll) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	next, ok := matchEntries(pos, st, st.stack.TopDown())
	if !ok {
		return pos, nil, false
	}
	kind := KindPeekAll
	if m.pop {
		st.stack.Clear()
		kind = KindPopAll
	}
	return next, &Node{Kind: kind, Span: pos.SpanTo(next)}, true
}

func (m peekAll) String() string {
	if m.pop {
		return "POP_ALL"
	}
	return "PEEK_ALL"
}

type peekSlice struct {
	start int
	end   *int
}

// PeekSlice matches entries [start, end) of the stack, counted from the top
// and matched top to bottom. Negative indices count from the bottom.
func PeekSlice(start, end int) Matcher {
	return &peekSlice{start: start, end: &end}
}

// PeekSliceFrom matches entries from start down to the bottom of the stack.
func PeekSliceFrom(start int) Matcher {
	return &peekSlice{start: start}
}

func (m *peekSlice) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	entries, err := st.stack.slice(m.start, m.end)
	if err != nil {
		st.tracker.RecordOutOfBound(m.start, m.end, pos)
		return pos, nil, false
	}
	next, ok := matchEntries(pos, st, entries)
	if !ok {
		return pos, nil, false
	}
	return next, &Node{Kind: KindPeekSlice, Span: pos.SpanTo(next)}, true
}

func (m *peekSlice) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PEEK[%d..", m.start)
	if m.end != nil {
		fmt.Fprintf(&b, "%d", *m.end)
	}
	b.WriteString("]")
	return b.String()
}

type drop struct{}

// Drop removes the top of the stack without matching anything.
func Drop() Matcher {
	return drop{}
}

func (drop) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	if _, ok := st.stack.Pop(); !ok {
		st.tracker.RecordEmptyStack(pos)
		return pos, nil, false
	}
	return pos, &Node{Kind: KindDrop, Span: pos.SpanTo(pos)}, true
}

func (drop) String() string {
	return "DROP"
}
