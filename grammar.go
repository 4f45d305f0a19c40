package ezpeg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sirupsen/logrus"
)

const (
	printNode = "Print"
	traceNode = "Trace"

	callNode        = "Call"
	literalNode     = "Literal"
	insensitiveNode = "Insensitive"
	rangeNode       = "Range"
	anyNode         = "Any"
	matcherNode     = "Matcher"

	startOfInputNode = "StartOfInput"
	endOfInputNode   = "EndOfInput"
	newlineNode      = "Newline"
	skipNode         = "SkipUntil"

	choiceNode     = "Choice"
	sequenceNode   = "Sequence"
	captureNode    = "Capture"
	lookaheadNode  = "Lookahead"
	rejectNode     = "Reject"
	optionalNode   = "Optional"
	repeatNode     = "Repeat"
	restorableNode = "Restorable"

	pushNode      = "Push"
	peekNode      = "Peek"
	peekAllNode   = "PeekAll"
	popNode       = "Pop"
	popAllNode    = "PopAll"
	peekSliceNode = "PeekSlice"
	dropNode      = "Drop"
)

const (
	inGrammar    = "inside-grammar"
	inDef        = "inside-definition"
	inChoice     = "inside-choice"
	inOptional   = "inside-optional"
	inRepeat     = "inside-repeat"
	inLookahead  = "inside-lookahead"
	inReject     = "inside-reject"
	inRestorable = "inside-restorable"
	inCapture    = "inside-capture"
	inPush       = "inside-push"
	inTrace      = "inside-trace"
)

type grammarNode struct {
	pos  int
	kind string
	args []*grammarNode

	text     string
	ranges   [][2]rune
	inverted bool
	min, max int
	end      *int
	message  []any
	matcher  Matcher
}

func (n *grammarNode) buildMatcher(g *Grammar) Matcher {
	switch n.kind {
	case printNode:
		p := g.posInfo[n.pos]
		return &printer{rule: g.ruleName(p), source: p.String(), args: n.message}
	case traceNode:
		p := g.posInfo[n.pos]
		return &traced{rule: g.ruleName(p), source: p.String(), inner: g.buildArgs(n.args)}
	case callNode:
		return Call(n.text)
	case literalNode:
		return Literal(n.text)
	case insensitiveNode:
		return Insensitive(n.text)
	case rangeNode:
		return &charClass{name: n.rangeLabel(), ranges: n.ranges, invert: n.inverted, kind: ErrUnmatchedCharRange}
	case anyNode:
		return Any()
	case matcherNode:
		return n.matcher
	case startOfInputNode:
		return StartOfInput()
	case endOfInputNode:
		return EndOfInput()
	case newlineNode:
		return Newline()
	case skipNode:
		return Skip(strings.Split(n.text, "\x00")...)
	case choiceNode:
		alts := make([]Matcher, len(n.args))
		for i, a := range n.args {
			alts[i] = a.buildMatcher(g)
		}
		return Choices(alts...)
	case sequenceNode:
		items := make([]Matcher, len(n.args))
		for i, a := range n.args {
			items[i] = a.buildMatcher(g)
		}
		return Sequence(items...)
	case captureNode:
		return Tag(n.text, g.buildArgs(n.args))
	case lookaheadNode:
		return Positive(g.buildArgs(n.args))
	case rejectNode:
		return Negative(g.buildArgs(n.args))
	case optionalNode:
		return Optional(g.buildArgs(n.args))
	case repeatNode:
		return RepeatRange(g.buildArgs(n.args), n.min, n.max)
	case restorableNode:
		return Restorable(g.buildArgs(n.args))
	case pushNode:
		return Push(g.buildArgs(n.args))
	case peekNode:
		return Peek()
	case peekAllNode:
		return PeekAll()
	case popNode:
		return Pop()
	case popAllNode:
		return PopAll()
	case peekSliceNode:
		if n.end == nil {
			return PeekSliceFrom(n.min)
		}
		return PeekSlice(n.min, *n.end)
	case dropNode:
		return Drop()
	default:
		return Empty()
	}
}

func (n *grammarNode) rangeLabel() string {
	parts := make([]string, len(n.ranges))
	for i, r := range n.ranges {
		parts[i] = (&charRange{min: r[0], max: r[1]}).String()
	}
	label := strings.Join(parts, " | ")
	if n.inverted {
		return "!(" + label + ")"
	}
	return label
}

type nodeBuilder struct {
	rule    *int
	context string
	args    []*grammarNode
}

func (b *nodeBuilder) buildNode(pos int) *grammarNode {
	if len(b.args) == 0 {
		return nil
	}
	if len(b.args) == 1 {
		return b.args[0]
	}
	return &grammarNode{kind: sequenceNode, args: b.args, pos: pos}
}

func (b *nodeBuilder) append(a *grammarNode) {
	b.args = append(b.args, a)
}

func (b *nodeBuilder) inRule() bool {
	return b != nil && b.context != inGrammar
}

type grammarError struct {
	g       *Grammar
	pos     int
	kind    error
	message string
}

type position struct {
	file string
	line int
	rule *int
}

func (p position) String() string {
	return fmt.Sprintf("%v:%v", p.file, p.line)
}

func (e *grammarError) Error() string {
	p := e.g.posInfo[e.pos]
	if p.rule != nil {
		name := e.g.names[*p.rule]
		rulePos := e.g.posInfo[e.g.rulePos[*p.rule]]
		return fmt.Sprintf("%v: %v (inside %q at %v)", p, e.message, name, rulePos)
	}
	return fmt.Sprintf("%v: %v", p, e.message)
}

func (e *grammarError) Unwrap() error {
	return e.kind
}

// Grammar is built by calling its methods from inside the function passed
// to BuildGrammar or BuildParser. Each rule is declared with Define, or one
// of Atomic, CompoundAtomic, NonAtomic and Silent, and its body is the
// sequence of builder calls made inside the rule's function.
type Grammar struct {
	Start string
	// Whitespace, when set and no WHITESPACE rule is defined, defines an
	// atomic WHITESPACE rule matching any one of these strings.
	Whitespace []string
	// Logger receives Print and Trace output, and rule traces when
	// Config.Trace is set. Defaults to discarding everything.
	Logger logrus.FieldLogger
	Config Config

	rules   []*grammarNode
	kinds   []RuleKind
	names   []string
	nameIdx map[string]int

	// list of pos for each name
	callPos map[string][]int

	// list of pos for each numbered rule
	rulePos []int
	// list of positions
	posInfo []position

	nb *nodeBuilder

	pos    int // grammar position
	errors []error
	err    error
}

// Err returns the first error found while building the grammar.
func (g *Grammar) Err() error {
	return g.err
}

func (g *Grammar) Errors() []error {
	if g.errors == nil {
		return []error{}
	}
	return g.errors
}

func (g *Grammar) error(pos int, kind error, args ...any) {
	g.record(&grammarError{g: g, pos: pos, kind: kind, message: fmt.Sprint(args...)})
}

func (g *Grammar) errorf(pos int, kind error, s string, args ...any) {
	g.record(&grammarError{g: g, pos: pos, kind: kind, message: fmt.Sprintf(s, args...)})
}

func (g *Grammar) record(err error) {
	if g.err == nil {
		g.err = err
	}
	g.errors = append(g.errors, err)
}

func (g *Grammar) ruleName(p position) string {
	if p.rule == nil {
		return ""
	}
	return g.names[*p.rule]
}

func (g *Grammar) markPosition() int {
	_, file, no, ok := runtime.Caller(2)
	if !ok {
		file, no = "?", 0
	}
	if base, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(base, file); err == nil {
			file = rel
		}
	}
	var rule *int
	if g.nb != nil {
		rule = g.nb.rule
	}
	pos := position{file: file, line: no, rule: rule}
	p := len(g.posInfo)

	g.posInfo = append(g.posInfo, pos)
	return p
}

func (g *Grammar) shouldExit(pos int) bool {
	if g.err != nil {
		return true
	}
	if g.nb == nil {
		g.error(pos, ErrBuilderMisuse, "must call builder methods inside builder")
		return true
	}
	if !g.nb.inRule() {
		g.error(pos, ErrBuilderMisuse, "must call builder methods inside Define()")
		return true
	}
	return false
}

func (g *Grammar) buildStub(context string, stub func()) *nodeBuilder {
	var rule *int
	oldNb := g.nb
	if oldNb != nil {
		rule = oldNb.rule
	}
	newNb := &nodeBuilder{context: context, rule: rule}
	g.nb = newNb
	stub()
	g.nb = oldNb
	return newNb
}

func (g *Grammar) buildRule(rule int, stub func()) *nodeBuilder {
	oldNb := g.nb
	newNb := &nodeBuilder{context: inDef, rule: &rule}
	g.nb = newNb
	stub()
	g.nb = oldNb
	return newNb
}

func (g *Grammar) buildArgs(args []*grammarNode) Matcher {
	switch len(args) {
	case 0:
		return Empty()
	case 1:
		return args[0].buildMatcher(g)
	}
	return (&grammarNode{kind: sequenceNode, args: args}).buildMatcher(g)
}

func (g *Grammar) buildGrammar(stub func(*Grammar)) error {
	if g.nb != nil || g.names != nil {
		return fmt.Errorf("%w: use empty grammar", ErrBuilderMisuse)
	}
	g.nameIdx = make(map[string]int)
	g.callPos = make(map[string][]int)
	g.nb = &nodeBuilder{context: inGrammar}

	stub(g)
	g.nb = nil

	if g.err == nil && len(g.Whitespace) > 0 {
		if _, ok := g.nameIdx[WhitespaceRule]; !ok {
			args := make([]*grammarNode, len(g.Whitespace))
			for i, w := range g.Whitespace {
				args[i] = &grammarNode{kind: literalNode, text: w, pos: g.pos}
			}
			g.addRule(g.pos, WhitespaceRule, RuleAtomic, &grammarNode{kind: choiceNode, args: args, pos: g.pos})
		}
	}

	return g.Check()
}

func (g *Grammar) addRule(p int, name string, kind RuleKind, body *grammarNode) {
	ruleNum := len(g.names)
	g.names = append(g.names, name)
	g.kinds = append(g.kinds, kind)
	g.nameIdx[name] = ruleNum
	g.rulePos = append(g.rulePos, p)
	g.rules = append(g.rules, body)
}

func (g *Grammar) canDefine(p int, name string) bool {
	if g.err != nil {
		return false
	} else if g.nb == nil {
		g.error(p, ErrBuilderMisuse, "must call define inside grammar")
		return false
	} else if g.nb.inRule() {
		g.error(p, ErrBuilderMisuse, "cant call define inside define")
		return false
	}

	if old, ok := g.nameIdx[name]; ok {
		oldPos := g.posInfo[g.rulePos[old]]
		g.errorf(p, ErrRedefinedRule, "cant redefine %q, already defined at %v", name, oldPos)
		return false
	}
	return true
}

func (g *Grammar) define(p int, name string, kind RuleKind, stub func()) {
	if !g.canDefine(p, name) {
		return
	}
	r := g.buildRule(len(g.names), stub)
	g.addRule(p, name, kind, r.buildNode(p))
}

// Define declares a normal rule.
func (g *Grammar) Define(name string, stub func()) {
	p := g.markPosition()
	g.define(p, name, RuleNormal, stub)
}

// Atomic declares a rule whose body never skips whitespace or comments and
// whose inner rules leave no nodes.
func (g *Grammar) Atomic(name string, stub func()) {
	p := g.markPosition()
	g.define(p, name, RuleAtomic, stub)
}

// CompoundAtomic declares an atomic rule that keeps the nodes of inner rules.
func (g *Grammar) CompoundAtomic(name string, stub func()) {
	p := g.markPosition()
	g.define(p, name, RuleCompoundAtomic, stub)
}

// NonAtomic declares a rule that skips whitespace even when called from an
// atomic rule.
func (g *Grammar) NonAtomic(name string, stub func()) {
	p := g.markPosition()
	g.define(p, name, RuleNonAtomic, stub)
}

// Silent declares a rule that leaves no node of its own.
func (g *Grammar) Silent(name string, stub func()) {
	p := g.markPosition()
	g.define(p, name, RuleSilent, stub)
}

// Rule declares a rule whose body is an already built Matcher.
func (g *Grammar) Rule(name string, kind RuleKind, body Matcher) {
	p := g.markPosition()
	if !g.canDefine(p, name) {
		return
	}
	g.noteCalls(p, body)
	g.addRule(p, name, kind, &grammarNode{kind: matcherNode, matcher: body, pos: p})
}

// Match appends an already built Matcher to the current rule.
func (g *Grammar) Match(m Matcher) {
	p := g.markPosition()
	if g.shouldExit(p) {
		return
	}
	g.noteCalls(p, m)
	g.nb.append(&grammarNode{kind: matcherNode, matcher: m, pos: p})
}

func (g *Grammar) noteCalls(p int, m Matcher) {
	walkCalls(m, func(name string) {
		g.callPos[name] = append(g.callPos[name], p)
	})
}

func walkCalls(m Matcher, visit func(string)) {
	switch m := m.(type) {
	case *call:
		visit(m.name)
	case *sequence:
		for _, item := range m.items {
			walkCalls(item, visit)
		}
	case *choice:
		walkCalls(m.first, visit)
		walkCalls(m.second, visit)
	case *optional:
		walkCalls(m.inner, visit)
	case *repeat:
		walkCalls(m.inner, visit)
	case *positive:
		walkCalls(m.inner, visit)
	case *negative:
		walkCalls(m.inner, visit)
	case *restorable:
		walkCalls(m.inner, visit)
	case *push:
		walkCalls(m.inner, visit)
	case *tag:
		walkCalls(m.inner, visit)
	case *traced:
		walkCalls(m.inner, visit)
	case *Rule:
		walkCalls(m.Body, visit)
	}
}

// Print logs its arguments each time the parse reaches it.
func (g *Grammar) Print(args ...any) {
	p := g.markPosition()
	if g.shouldExit(p) {
		return
	}
	a := &grammarNode{kind: printNode, message: args, pos: p}
	g.nb.append(a)
}

// Trace logs each time the parse enters and leaves the rules in stub.
func (g *Grammar) Trace(stub func()) {
	p := g.markPosition()
	g.wrap(p, traceNode, inTrace, stub, nil)
}

func (g *Grammar) Call(name string) {
	p := g.markPosition()
	if g.shouldExit(p) {
		return
	}
	g.callPos[name] = append(g.callPos[name], p)
	a := &grammarNode{kind: callNode, text: name, pos: p}
	g.nb.append(a)
}

// Literal matches s, or any one of several strings, tried in order.
func (g *Grammar) Literal(s ...string) {
	p := g.markPosition()
	g.literal(p, literalNode, s)
}

// Insensitive is Literal ignoring case.
func (g *Grammar) Insensitive(s ...string) {
	p := g.markPosition()
	g.literal(p, insensitiveNode, s)
}

func (g *Grammar) literal(p int, kind string, s []string) {
	if g.shouldExit(p) {
		return
	}
	if len(s) == 0 {
		g.error(p, ErrBuilderMisuse, "missing operand")
		return
	}

	if len(s) == 1 {
		a := &grammarNode{kind: kind, text: s[0], pos: p}
		g.nb.append(a)
	} else {
		args := make([]*grammarNode, len(s))
		for i, v := range s {
			args[i] = &grammarNode{kind: kind, text: v, pos: p}
		}
		a := &grammarNode{kind: choiceNode, args: args, pos: p}
		g.nb.append(a)
	}
}

// RangeOptions is returned by Range to allow inverting it.
type RangeOptions struct {
	g    *Grammar
	nb   *nodeBuilder
	node *grammarNode
}

// Invert makes the range match any one character outside it. It must be
// called straight after Range.
func (ro RangeOptions) Invert() {
	g := ro.g
	p := g.markPosition()
	if ro.node == nil || g.err != nil {
		return
	}
	if g.nb != ro.nb || len(g.nb.args) == 0 || g.nb.args[len(g.nb.args)-1] != ro.node {
		g.error(p, ErrBuilderMisuse, "Invert() must be called straight after Range()")
		return
	}
	ro.node.inverted = true
}

// Range matches one character in any of ranges. Each range is either one
// character, or two characters joined by a dash as in "a-z".
func (g *Grammar) Range(ranges ...string) RangeOptions {
	p := g.markPosition()
	if g.shouldExit(p) {
		return RangeOptions{g: g}
	}
	if len(ranges) == 0 {
		g.error(p, ErrBuilderMisuse, "missing operand")
		return RangeOptions{g: g}
	}
	n := &grammarNode{kind: rangeNode, pos: p}
	for _, r := range ranges {
		lo, hi, ok := parseRange(r)
		if !ok {
			g.errorf(p, ErrBuilderMisuse, "invalid range %q", r)
			return RangeOptions{g: g}
		}
		n.ranges = append(n.ranges, [2]rune{lo, hi})
	}
	g.nb.append(n)
	return RangeOptions{g: g, nb: g.nb, node: n}
}

func parseRange(s string) (rune, rune, bool) {
	switch utf8.RuneCountInString(s) {
	case 1:
		r, _ := utf8.DecodeRuneInString(s)
		return r, r, r != utf8.RuneError
	case 3:
		rs := []rune(s)
		if rs[1] != '-' || rs[0] > rs[2] {
			return 0, 0, false
		}
		return rs[0], rs[2], true
	}
	return 0, 0, false
}

func (g *Grammar) leaf(p int, kind string) {
	if g.shouldExit(p) {
		return
	}
	g.nb.append(&grammarNode{kind: kind, pos: p})
}

func (g *Grammar) Any() {
	p := g.markPosition()
	g.leaf(p, anyNode)
}

func (g *Grammar) StartOfInput() {
	p := g.markPosition()
	g.leaf(p, startOfInputNode)
}

func (g *Grammar) EndOfInput() {
	p := g.markPosition()
	g.leaf(p, endOfInputNode)
}

func (g *Grammar) Newline() {
	p := g.markPosition()
	g.leaf(p, newlineNode)
}

// SkipUntil consumes input up to the first of delimiters.
func (g *Grammar) SkipUntil(delimiters ...string) {
	p := g.markPosition()
	if g.shouldExit(p) {
		return
	}
	if len(delimiters) == 0 {
		g.error(p, ErrBuilderMisuse, "missing operand")
		return
	}
	g.nb.append(&grammarNode{kind: skipNode, text: strings.Join(delimiters, "\x00"), pos: p})
}

// Choice tries each option in order and keeps the first that matches.
func (g *Grammar) Choice(options ...func()) {
	p := g.markPosition()
	if g.shouldExit(p) {
		return
	}

	args := make([]*grammarNode, len(options))
	for i, stub := range options {
		r := g.buildStub(inChoice, stub)

		if g.err != nil {
			return
		}

		args[i] = r.buildNode(p)
		if args[i] == nil {
			args[i] = &grammarNode{pos: p}
		}
	}
	a := &grammarNode{kind: choiceNode, args: args, pos: p}
	g.nb.append(a)
}

func (g *Grammar) wrap(p int, kind, context string, stub func(), init func(*grammarNode)) {
	if g.shouldExit(p) {
		return
	}
	r := g.buildStub(context, stub)
	if g.err != nil {
		return
	}

	a := &grammarNode{kind: kind, args: r.args, pos: p}
	if init != nil {
		init(a)
	}
	g.nb.append(a)
}

func (g *Grammar) Optional(stub func()) {
	p := g.markPosition()
	g.wrap(p, optionalNode, inOptional, stub, nil)
}

// Repeat matches stub at least min times, and at most max times unless max
// is zero.
func (g *Grammar) Repeat(min int, max int, stub func()) {
	p := g.markPosition()
	if max != 0 && max < min {
		g.errorf(p, ErrBuilderMisuse, "repeat max %d below min %d", max, min)
		return
	}
	g.wrap(p, repeatNode, inRepeat, stub, func(n *grammarNode) {
		n.min, n.max = min, max
	})
}

// Lookahead matches when stub would, without consuming anything.
func (g *Grammar) Lookahead(stub func()) {
	p := g.markPosition()
	g.wrap(p, lookaheadNode, inLookahead, stub, nil)
}

// Reject matches when stub would not, without consuming anything.
func (g *Grammar) Reject(stub func()) {
	p := g.markPosition()
	g.wrap(p, rejectNode, inReject, stub, nil)
}

// Restorable undoes stack changes made by stub when it fails.
func (g *Grammar) Restorable(stub func()) {
	p := g.markPosition()
	g.wrap(p, restorableNode, inRestorable, stub, nil)
}

// Capture tags the node matched by stub with name.
func (g *Grammar) Capture(name string, stub func()) {
	p := g.markPosition()
	g.wrap(p, captureNode, inCapture, stub, func(n *grammarNode) {
		n.text = name
	})
}

// Push matches stub and pushes what it matched onto the stack.
func (g *Grammar) Push(stub func()) {
	p := g.markPosition()
	g.wrap(p, pushNode, inPush, stub, nil)
}

func (g *Grammar) Peek() {
	p := g.markPosition()
	g.leaf(p, peekNode)
}

func (g *Grammar) PeekAll() {
	p := g.markPosition()
	g.leaf(p, peekAllNode)
}

func (g *Grammar) Pop() {
	p := g.markPosition()
	g.leaf(p, popNode)
}

func (g *Grammar) PopAll() {
	p := g.markPosition()
	g.leaf(p, popAllNode)
}

func (g *Grammar) Drop() {
	p := g.markPosition()
	g.leaf(p, dropNode)
}

// PeekSlice matches stack entries [start, end), see the PeekSlice matcher.
func (g *Grammar) PeekSlice(start, end int) {
	p := g.markPosition()
	if g.shouldExit(p) {
		return
	}
	g.nb.append(&grammarNode{kind: peekSliceNode, min: start, end: &end, pos: p})
}

// PeekSliceFrom matches stack entries from start to the bottom.
func (g *Grammar) PeekSliceFrom(start int) {
	p := g.markPosition()
	if g.shouldExit(p) {
		return
	}
	g.nb.append(&grammarNode{kind: peekSliceNode, min: start, pos: p})
}

// Check reports missing, unused and undefined starting rules. It is called
// by BuildGrammar and BuildParser.
func (g *Grammar) Check() error {
	if g.err != nil {
		return g.joinedErr()
	}

	missing := make([]string, 0)
	for name := range g.callPos {
		if _, ok := g.nameIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		for _, p := range g.callPos[name] {
			if s := g.suggest(name); s != "" {
				g.errorf(p, ErrMissingRule, "missing rule %q, did you mean %q?", name, s)
			} else {
				g.errorf(p, ErrMissingRule, "missing rule %q", name)
			}
		}
	}

	for n, name := range g.names {
		switch name {
		case g.Start, WhitespaceRule, CommentRule:
			continue
		}
		if g.callPos[name] == nil {
			p := g.rulePos[n]
			g.errorf(p, ErrUnusedRule, "unused rule %q", name)
		}
	}

	if g.Start == "" {
		g.error(g.pos, ErrNoStartRule, "starting rule undefined")
	} else if _, ok := g.nameIdx[g.Start]; !ok {
		g.errorf(g.pos, ErrNoStartRule, "starting rule %q is missing", g.Start)
	}

	return g.joinedErr()
}

func (g *Grammar) joinedErr() error {
	if len(g.errors) > 1 {
		return errors.Join(g.errors...)
	}
	return g.err
}

func (g *Grammar) suggest(name string) string {
	best, bestDist := "", 3
	for _, candidate := range g.names {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

func (g *Grammar) Parser() (*Parser, error) {
	if err := g.Check(); err != nil {
		return nil, err
	}

	rules := make(map[string]*Rule, len(g.rules))
	for k, v := range g.rules {
		var body Matcher = Empty()
		if v != nil {
			body = v.buildMatcher(g)
		}
		rules[g.names[k]] = NewRule(g.names[k], g.kinds[k], body)
	}

	logger := g.Logger
	if logger == nil {
		logger = discardLogger()
	}
	cfg := g.Config
	cfg.applyDefaults()

	return &Parser{
		start:  g.Start,
		rules:  rules,
		config: cfg,
		logger: logger,
	}, nil
}

// String lists the rules of the grammar, one per line, in definition order.
func (g *Grammar) String() string {
	var b strings.Builder
	for i, name := range g.names {
		body := "EMPTY"
		if g.rules[i] != nil {
			body = g.rules[i].buildMatcher(g).String()
		}
		kind := ""
		if g.kinds[i] != RuleNormal {
			kind = " (" + g.kinds[i].String() + ")"
		}
		fmt.Fprintf(&b, "%s%s = %s\n", name, kind, body)
	}
	return b.String()
}

func BuildGrammar(stub func(*Grammar)) (*Grammar, error) {
	g := &Grammar{}
	g.pos = g.markPosition()
	err := g.buildGrammar(stub)
	if err != nil {
		return g, err
	}
	return g, nil
}

func BuildParser(stub func(*Grammar)) (*Parser, error) {
	g := &Grammar{}
	g.pos = g.markPosition()
	err := g.buildGrammar(stub)
	if err != nil {
		return nil, err
	}

	return g.Parser()
}

// MustBuildParser is BuildParser for package level parsers. It panics if
// the grammar has errors.
func MustBuildParser(stub func(*Grammar)) *Parser {
	g := &Grammar{}
	g.pos = g.markPosition()
	if err := g.buildGrammar(stub); err != nil {
		panic(err)
	}
	p, err := g.Parser()
	if err != nil {
		panic(err)
	}
	return p
}
