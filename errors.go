package ezpeg

import (
	"errors"
	"fmt"
	"strings"
)

// Match failures. Every Failure unwraps to exactly one of these.
var (
	ErrUnmatchedLiteral    = errors.New("unmatched literal")
	ErrUnmatchedCharRange  = errors.New("unmatched character range")
	ErrUnmatchedBuiltin    = errors.New("unmatched builtin")
	ErrUnmatchedRule       = errors.New("unmatched rule")
	ErrPredicateFailed     = errors.New("predicate failed")
	ErrEmptyStack          = errors.New("empty stack")
	ErrSliceOutOfBound     = errors.New("stack slice out of bound")
	ErrRepeatLimitExceeded = errors.New("too many repetitions")
)

// Grammar construction errors.
var (
	ErrMissingRule   = errors.New("missing rule")
	ErrUnusedRule    = errors.New("unused rule")
	ErrNoStartRule   = errors.New("starting rule undefined")
	ErrRedefinedRule = errors.New("rule redefined")
	ErrBuilderMisuse = errors.New("builder misuse")
)

// ErrUnsupportedConfig is returned by LoadConfig for unknown file types.
var ErrUnsupportedConfig = errors.New("unsupported config format")

// Lookahead says whether a failure happened inside a predicate.
type Lookahead int

const (
	LookaheadNone Lookahead = iota
	LookaheadPositive
	LookaheadNegative
)

func (l Lookahead) String() string {
	switch l {
	case LookaheadPositive:
		return "positive"
	case LookaheadNegative:
		return "negative"
	}
	return "none"
}

// Failure is one recorded reason for a mismatch at an offset.
type Failure struct {
	Kind      error
	Label     string
	Offset    int
	Predicate Lookahead
	// Rules is the chain of rules being matched, outermost first.
	Rules []string
}

func (f *Failure) Error() string {
	switch f.Kind {
	case ErrEmptyStack, ErrRepeatLimitExceeded:
		return f.Kind.Error()
	case ErrSliceOutOfBound:
		return fmt.Sprintf("%v: %s", f.Kind, f.Label)
	case ErrPredicateFailed:
		if f.Predicate == LookaheadNegative {
			return fmt.Sprintf("unexpected %s", f.Label)
		}
		return fmt.Sprintf("expected %s", f.Label)
	}
	return "expected " + f.Label
}

func (f *Failure) Unwrap() error {
	return f.Kind
}

func (f *Failure) same(o *Failure) bool {
	return f.Kind == o.Kind && f.Label == o.Label && f.Predicate == o.Predicate
}

// RuleError nests a failure under the rule that was being matched.
type RuleError struct {
	Rule  string
	Cause error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("in rule %s: %v", e.Rule, e.Cause)
}

func (e *RuleError) Unwrap() error {
	return e.Cause
}

// Error is returned when a parse fails. It describes the furthest offset the
// parse reached and what was expected there.
type Error struct {
	Offset int
	Line   int
	Column int
	// Expected lists the labels of the failures at Offset, in the order they
	// were first recorded.
	Expected  []string
	Predicate Lookahead
	Rules     []string
	Failures  []*Failure

	input string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d", e.Line, e.Column)
	if len(e.Rules) > 0 {
		fmt.Fprintf(&b, " (in %s)", e.Rules[len(e.Rules)-1])
	}
	b.WriteString(": ")

	var expected, unexpected, other []string
	for _, f := range e.Failures {
		switch {
		case f.Kind == ErrPredicateFailed && f.Predicate == LookaheadNegative:
			unexpected = append(unexpected, f.Label)
		case f.Kind == ErrEmptyStack || f.Kind == ErrSliceOutOfBound || f.Kind == ErrRepeatLimitExceeded:
			other = append(other, f.Error())
		default:
			expected = append(expected, f.Label)
		}
	}
	var parts []string
	if len(expected) > 0 {
		parts = append(parts, "expected "+listJoin(expected, "or"))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected "+listJoin(unexpected, "or"))
	}
	parts = append(parts, other...)
	if len(parts) == 0 {
		parts = append(parts, "no match")
	}
	b.WriteString(strings.Join(parts, "; "))
	return b.String()
}

// Unwrap returns every failure nested under its rule chain, so errors.Is
// finds both the failure kinds and the rule errors.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		var err error = f
		for i := len(f.Rules) - 1; i >= 0; i-- {
			err = &RuleError{Rule: f.Rules[i], Cause: err}
		}
		errs = append(errs, err)
	}
	return errs
}

// Snippet returns the input line containing the error and a caret under
// the failing column.
func (e *Error) Snippet() string {
	start := strings.LastIndexAny(e.input[:e.Offset], "\r\n") + 1
	end := strings.IndexAny(e.input[e.Offset:], "\r\n")
	if end < 0 {
		end = len(e.input)
	} else {
		end += e.Offset
	}
	line := strings.ReplaceAll(e.input[start:end], "\t", " ")
	return line + "\n" + strings.Repeat(" ", e.Column-1) + "^"
}

func listJoin(list []string, sep string) string {
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	}
	return strings.Join(list[:len(list)-1], ", ") + " " + sep + " " + list[len(list)-1]
}

func sliceLabel(start int, end *int) string {
	if end == nil {
		return fmt.Sprintf("[%d..]", start)
	}
	return fmt.Sprintf("[%d..%d]", start, *end)
}

func sliceError(start int, end *int) error {
	return fmt.Errorf("%w: %s", ErrSliceOutOfBound, sliceLabel(start, end))
}
