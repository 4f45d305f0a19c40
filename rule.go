package ezpeg

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RuleKind controls how a rule handles atomicity and what node it leaves in
// the tree.
type RuleKind int

const (
	// RuleNormal inherits atomicity and produces a node.
	RuleNormal RuleKind = iota
	// RuleSilent inherits atomicity and leaves its body's node in place of
	// its own. Its name is never reported in errors.
	RuleSilent
	// RuleAtomic matches its body atomically and hides the body's nodes.
	RuleAtomic
	// RuleCompoundAtomic matches its body atomically and keeps the body's
	// nodes.
	RuleCompoundAtomic
	// RuleNonAtomic matches its body non-atomically, even inside an atomic
	// rule.
	RuleNonAtomic
)

func (k RuleKind) String() string {
	switch k {
	case RuleSilent:
		return "silent"
	case RuleAtomic:
		return "atomic"
	case RuleCompoundAtomic:
		return "compound-atomic"
	case RuleNonAtomic:
		return "non-atomic"
	}
	return "normal"
}

// Names of the rules matched between the items of non-atomic sequences and
// repetitions.
const (
	WhitespaceRule = "WHITESPACE"
	CommentRule    = "COMMENT"
)

// Rule is a named matcher. It can be used in place like any other Matcher,
// or added to a grammar and referred to by name with Call.
type Rule struct {
	Name string
	Kind RuleKind
	Body Matcher
}

func NewRule(name string, kind RuleKind, body Matcher) *Rule {
	return &Rule{Name: name, Kind: kind, Body: body}
}

func (r *Rule) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	switch r.Kind {
	case RuleAtomic, RuleCompoundAtomic:
		atomic = true
	case RuleNonAtomic:
		atomic = false
	}

	done := st.tracker.EnterRule(r.Name, pos, r.Kind != RuleSilent)
	next, body, ok := r.Body.match(pos, st, atomic)
	done(ok)

	if st.config.Trace {
		st.logger.WithFields(logrus.Fields{
			"rule":    r.Name,
			"offset":  pos.offset,
			"matched": ok,
		}).Debug("rule")
	}
	if !ok {
		return pos, nil, false
	}

	switch r.Kind {
	case RuleSilent:
		return next, body, true
	case RuleAtomic:
		return next, &Node{Kind: KindRule, Span: pos.SpanTo(next), Rule: r.Name}, true
	}
	return next, &Node{Kind: KindRule, Span: pos.SpanTo(next), Rule: r.Name, Children: []*Node{body}}, true
}

func (r *Rule) String() string {
	return r.Name
}

type call struct {
	name string
}

// Call matches the grammar rule named name. The rule is looked up when the
// match runs, so rules may refer to each other recursively.
func Call(name string) Matcher {
	return &call{name: name}
}

func (m *call) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	r, ok := st.rules[m.name]
	if !ok {
		st.tracker.RecordFail(ErrUnmatchedRule, m.name, pos)
		return pos, nil, false
	}
	return r.match(pos, st, atomic)
}

func (m *call) String() string {
	return m.name
}

// state is everything a single parse carries besides the cursor.
type state struct {
	stack   *Stack[Span]
	tracker *Tracker
	rules   map[string]*Rule
	config  Config
	logger  logrus.FieldLogger

	skipping bool
}

func newState(rules map[string]*Rule, config Config, logger logrus.FieldLogger) *state {
	return &state{
		stack:   NewStack[Span](),
		tracker: NewTracker(),
		rules:   rules,
		config:  config,
		logger:  logger,
	}
}

// skipIgnored consumes WHITESPACE and COMMENT rules. Failures seen while
// doing so are not tracked.
func (st *state) skipIgnored(pos Position, atomic bool) Position {
	if atomic || st.skipping {
		return pos
	}
	ws, comment := st.rules[WhitespaceRule], st.rules[CommentRule]
	if ws == nil && comment == nil {
		return pos
	}

	st.skipping = true
	saved := st.tracker.save()
	for {
		start := pos.offset
		if ws != nil {
			for {
				next, _, ok := ws.match(pos, st, true)
				if !ok || next.offset == pos.offset {
					break
				}
				pos = next
			}
		}
		if comment != nil {
			if next, _, ok := comment.match(pos, st, true); ok {
				pos = next
			}
		}
		if pos.offset == start {
			break
		}
	}
	st.tracker.load(saved)
	st.skipping = false
	return pos
}

// traced logs when inner is entered and left. source is where the trace
// was asked for.
type traced struct {
	rule   string
	source string
	inner  Matcher
}

func (m *traced) match(pos Position, st *state, atomic bool) (Position, *Node, bool) {
	log := st.logger.WithFields(logrus.Fields{
		"rule":   m.rule,
		"source": m.source,
		"offset": pos.offset,
	})
	log.WithField("at", pos.String()).Info("enter")
	next, node, ok := m.inner.match(pos, st, atomic)
	log.WithFields(logrus.Fields{"matched": ok, "end": next.offset}).Info("exit")
	return next, node, ok
}

func (m *traced) String() string {
	return m.inner.String()
}

type printer struct {
	rule   string
	source string
	args   []any
}

func (m *printer) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	st.logger.WithFields(logrus.Fields{
		"rule":   m.rule,
		"source": m.source,
		"offset": pos.offset,
	}).Info(fmt.Sprint(m.args...))
	return pos, &Node{Kind: KindEmpty, Span: pos.SpanTo(pos)}, true
}

func (m *printer) String() string {
	return "PRINT"
}
