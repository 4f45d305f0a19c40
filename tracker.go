package ezpeg

import (
	"slices"
	"strconv"
)

// Tracker accumulates the failure that got furthest through the input.
// Failures nearer than the furthest offset are dropped, failures at the same
// offset accumulate, and a failure further along replaces everything.
type Tracker struct {
	furthest  int
	failures  []*Failure
	rules     []string
	lookahead Lookahead
	// negatives counts the enclosing negative lookaheads
	negatives int
}

func NewTracker() *Tracker {
	return &Tracker{furthest: -1}
}

// Furthest returns the furthest offset a failure was recorded at, or -1.
func (t *Tracker) Furthest() int {
	return t.furthest
}

func (t *Tracker) Failures() []*Failure {
	return t.failures
}

func (t *Tracker) record(f *Failure, pos Position) {
	if t.negatives > 0 {
		return
	}
	switch {
	case pos.offset < t.furthest:
		return
	case pos.offset > t.furthest:
		t.furthest = pos.offset
		t.failures = nil
	}
	f.Offset = pos.offset
	if f.Predicate == LookaheadNone {
		f.Predicate = t.lookahead
	}
	if f.Rules == nil {
		f.Rules = slices.Clone(t.rules)
	}
	t.add(f)
}

func (t *Tracker) add(f *Failure) {
	for _, have := range t.failures {
		if have.same(f) {
			return
		}
	}
	t.failures = append(t.failures, f)
}

// RecordFail records that label was expected at pos.
func (t *Tracker) RecordFail(kind error, label string, pos Position) {
	t.record(&Failure{Kind: kind, Label: label}, pos)
}

func (t *Tracker) RecordLiteral(s string, pos Position) {
	t.RecordFail(ErrUnmatchedLiteral, strconv.Quote(s), pos)
}

func (t *Tracker) RecordEmptyStack(pos Position) {
	t.record(&Failure{Kind: ErrEmptyStack, Label: "stack entry"}, pos)
}

func (t *Tracker) RecordOutOfBound(start int, end *int, pos Position) {
	t.record(&Failure{Kind: ErrSliceOutOfBound, Label: sliceLabel(start, end)}, pos)
}

func (t *Tracker) RecordRepeatLimit(pos Position) {
	t.record(&Failure{Kind: ErrRepeatLimitExceeded, Label: "fewer repetitions"}, pos)
}

// RecordPredicate records the failure of a lookahead over label.
func (t *Tracker) RecordPredicate(mode Lookahead, label string, pos Position) {
	t.record(&Failure{Kind: ErrPredicateFailed, Label: label, Predicate: mode}, pos)
}

// EnterRule pushes name onto the rule chain. The returned func pops it
// again. When a labelled rule fails without any inner failure getting past
// the rule's start, the inner failures at that offset are replaced by the
// rule name. Unlabelled rules are not part of the chain.
func (t *Tracker) EnterRule(name string, pos Position, labelled bool) func(matched bool) {
	if !labelled {
		return func(bool) {}
	}
	t.rules = append(t.rules, name)
	entryFurthest, entryCount := t.furthest, len(t.failures)
	return func(matched bool) {
		t.rules = t.rules[:len(t.rules)-1]
		if matched || t.negatives > 0 {
			return
		}
		switch {
		case t.furthest > pos.offset:
			return
		case t.furthest == pos.offset:
			keep := 0
			if entryFurthest == pos.offset && entryCount <= len(t.failures) {
				keep = entryCount
			}
			t.failures = t.failures[:keep]
		}
		t.RecordFail(ErrUnmatchedRule, name, pos)
	}
}

// Positive runs f as a positive lookahead.
func (t *Tracker) Positive(f func()) {
	prev := t.lookahead
	if prev != LookaheadNegative {
		t.lookahead = LookaheadPositive
	}
	f()
	t.lookahead = prev
}

// Negative runs f as a negative lookahead. Failures recorded by f are
// dropped, including those under nested lookaheads of either kind.
func (t *Tracker) Negative(f func()) {
	prev := t.lookahead
	t.lookahead = LookaheadNegative
	t.negatives++
	f()
	t.negatives--
	t.lookahead = prev
}

// Fork returns an empty tracker in the same rule and lookahead context.
func (t *Tracker) Fork() *Tracker {
	return &Tracker{
		furthest:  -1,
		rules:     slices.Clone(t.rules),
		lookahead: t.lookahead,
		negatives: t.negatives,
	}
}

// Merge keeps whichever of t and other got further, and the union of their
// failures when they got equally far.
func (t *Tracker) Merge(other *Tracker) {
	switch {
	case other.furthest > t.furthest:
		t.furthest = other.furthest
		t.failures = slices.Clone(other.failures)
	case other.furthest == t.furthest:
		for _, f := range other.failures {
			t.add(f)
		}
	}
}

type trackerState struct {
	furthest int
	failures []*Failure
}

func (t *Tracker) save() trackerState {
	return trackerState{furthest: t.furthest, failures: slices.Clone(t.failures)}
}

func (t *Tracker) load(s trackerState) {
	t.furthest = s.furthest
	t.failures = s.failures
}

// Finish turns the tracked failures into an *Error.
func (t *Tracker) Finish(input string) *Error {
	offset := t.furthest
	if offset < 0 {
		offset = 0
	}
	line, col := lineCol(input, offset)
	e := &Error{
		Offset:   offset,
		Line:     line,
		Column:   col,
		Failures: slices.Clone(t.failures),
		input:    input,
	}
	for _, f := range t.failures {
		if !slices.Contains(e.Expected, f.Label) {
			e.Expected = append(e.Expected, f.Label)
		}
		if e.Predicate == LookaheadNone {
			e.Predicate = f.Predicate
		}
	}
	if len(t.failures) > 0 {
		e.Rules = t.failures[0].Rules
	}
	return e
}
