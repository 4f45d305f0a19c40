package ezpeg

import (
	"fmt"
	"strings"
)

type sequence struct {
	items []Matcher
}

// Sequence matches items one after the other, skipping ignored text between
// them unless atomic. A failure part way through does not undo stack
// changes made by earlier items; wrap the sequence in Restorable for that.
func Sequence(items ...Matcher) Matcher {
	return &sequence{items: items}
}

func (m *sequence) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	start := pos
	children := make([]*Node, 0, len(m.items))
	for i, item := range m.items {
		if i > 0 {
			pos = st.skipIgnored(pos, atomic)
		}
		next, node, ok := item.match(pos, st, atomic)
		if !ok {
			return start, nil, false
		}
		pos = next
		children = append(children, node)
	}
	return pos, &Node{Kind: KindSequence, Span: start.SpanTo(pos), Children: children}, true
}

func (m *sequence) String() string {
	parts := make([]string, len(m.items))
	for i, item := range m.items {
		parts[i] = item.String()
	}
	return "(" + strings.Join(parts, " ~ ") + ")"
}

type choice struct {
	first, second Matcher
}

// Choice tries first, and second only if first fails. The first success
// wins even when second would match more.
func Choice(first, second Matcher) Matcher {
	return &choice{first: first, second: second}
}

// Choices folds alternatives into nested binary choices.
func Choices(alternatives ...Matcher) Matcher {
	switch len(alternatives) {
	case 0:
		return AlwaysFail()
	case 1:
		return alternatives[0]
	}
	return Choice(alternatives[0], Choices(alternatives[1:]...))
}

func (m *choice) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	if next, node, ok := m.first.match(pos, st, atomic); ok {
		return next, &Node{Kind: KindChoice, Span: pos.SpanTo(next), Alt: 0, Children: []*Node{node}}, true
	}

	outer := st.tracker
	st.tracker = outer.Fork()
	next, node, ok := m.second.match(pos, st, atomic)
	outer.Merge(st.tracker)
	st.tracker = outer

	if !ok {
		return pos, nil, false
	}
	return next, &Node{Kind: KindChoice, Span: pos.SpanTo(next), Alt: 1, Children: []*Node{node}}, true
}

func (m *choice) String() string {
	return fmt.Sprintf("(%v | %v)", m.first, m.second)
}

type optional struct {
	inner Matcher
}

// Optional matches inner or nothing. Stack changes of a failed attempt are
// undone. It never fails.
func Optional(inner Matcher) Matcher {
	return &optional{inner: inner}
}

func (m *optional) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	st.stack.Snapshot()
	next, node, ok := m.inner.match(pos, st, atomic)
	if !ok {
		st.stack.Restore()
		return pos, &Node{Kind: KindOptional, Span: pos.SpanTo(pos)}, true
	}
	st.stack.ClearSnapshot()
	return next, &Node{Kind: KindOptional, Span: pos.SpanTo(next), Children: []*Node{node}}, true
}

func (m *optional) String() string {
	return m.inner.String() + "?"
}

type repeat struct {
	inner    Matcher
	min, max int
}

// Repeat matches inner as many times as it can, zero included.
func Repeat(inner Matcher) Matcher {
	return &repeat{inner: inner}
}

// RepeatRange matches inner at least min times and stops after max matches.
// A max of zero means no upper bound.
func RepeatRange(inner Matcher, min, max int) Matcher {
	return &repeat{inner: inner, min: min, max: max}
}

func (m *repeat) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	start := pos
	limit := st.config.RepeatLimit
	var children []*Node
	for m.max == 0 || len(children) < m.max {
		cur := pos
		if len(children) > 0 {
			cur = st.skipIgnored(pos, atomic)
		}
		next, node, ok := m.inner.match(cur, st, atomic)
		if !ok {
			break
		}
		if limit < 0 && next.offset == pos.offset {
			break
		}
		pos = next
		children = append(children, node)
		if limit >= 0 && len(children) > limit {
			st.tracker.RecordRepeatLimit(pos)
			return start, nil, false
		}
	}
	if len(children) < m.min {
		return start, nil, false
	}
	return pos, &Node{Kind: KindRepeat, Span: start.SpanTo(pos), Children: children}, true
}

func (m *repeat) String() string {
	switch {
	case m.min == 0 && m.max == 0:
		return m.inner.String() + "*"
	case m.min == 1 && m.max == 0:
		return m.inner.String() + "+"
	case m.max == 0:
		return fmt.Sprintf("%v{%d,}", m.inner, m.min)
	case m.min == m.max:
		return fmt.Sprintf("%v{%d}", m.inner, m.min)
	}
	return fmt.Sprintf("%v{%d,%d}", m.inner, m.min, m.max)
}

type positive struct {
	inner Matcher
}

// Positive succeeds when inner matches, without consuming input or keeping
// any stack change.
func Positive(inner Matcher) Matcher {
	return &positive{inner: inner}
}

func (m *positive) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	var (
		node *Node
		ok   bool
	)
	st.stack.Snapshot()
	st.tracker.Positive(func() {
		_, node, ok = m.inner.match(pos, st, atomic)
	})
	st.stack.Restore()
	if !ok {
		st.tracker.RecordPredicate(LookaheadPositive, m.inner.String(), pos)
		return pos, nil, false
	}
	return pos, &Node{Kind: KindPositive, Span: pos.SpanTo(pos), Children: []*Node{node}}, true
}

func (m *positive) String() string {
	return "&" + m.inner.String()
}

type negative struct {
	inner Matcher
}

// Negative succeeds when inner does not match. It never consumes input or
// keeps stack changes.
func Negative(inner Matcher) Matcher {
	return &negative{inner: inner}
}

func (m *negative) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	var ok bool
	st.stack.Snapshot()
	st.tracker.Negative(func() {
		_, _, ok = m.inner.match(pos, st, atomic)
	})
	st.stack.Restore()
	if ok {
		st.tracker.RecordPredicate(LookaheadNegative, m.inner.String(), pos)
		return pos, nil, false
	}
	return pos, &Node{Kind: KindNegative, Span: pos.SpanTo(pos)}, true
}

func (m *negative) String() string {
	return "!" + m.inner.String()
}

type restorable struct {
	inner Matcher
}

// Restorable undoes the stack changes of inner when inner fails.
func Restorable(inner Matcher) Matcher {
	return &restorable{inner: inner}
}

func (m *restorable) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	st.stack.Snapshot()
	next, node, ok := m.inner.match(pos, st, atomic)
	if !ok {
		st.stack.Restore()
		return pos, nil, false
	}
	st.stack.ClearSnapshot()
	return next, &Node{Kind: KindRestorable, Span: pos.SpanTo(next), Children: []*Node{node}}, true
}

func (m *restorable) String() string {
	return "RESTORE(" + m.inner.String() + ")"
}

type tag struct {
	name  string
	inner Matcher
}

// Tag names the node produced by inner.
func Tag(name string, inner Matcher) Matcher {
	return &tag{name: name, inner: inner}
}

func (m *tag) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	next, node, ok := m.inner.match(pos, st, atomic)
	if !ok {
		return pos, nil, false
	}
	return next, &Node{Kind: KindTag, Span: pos.SpanTo(next), Tag: m.name, Children: []*Node{node}}, true
}

func (m *tag) String() string {
	return "#" + m.name + " = " + m.inner.String()
}
