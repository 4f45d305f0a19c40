package ezpeg

import (
	"fmt"
	"strings"
)

// Kind says which matcher produced a Node.
type Kind int

const (
	KindEmpty Kind = iota
	KindLiteral
	KindInsensitive
	KindRange
	KindAny
	KindStartOfInput
	KindEndOfInput
	KindNewline
	KindSkip
	KindSequence
	KindChoice
	KindOptional
	KindRepeat
	KindPositive
	KindNegative
	KindRestorable
	KindPush
	KindPeek
	KindPeekAll
	KindPop
	KindPopAll
	KindPeekSlice
	KindDrop
	KindRule
	KindTag
)

var kindNames = [...]string{
	KindEmpty:        "Empty",
	KindLiteral:      "Literal",
	KindInsensitive:  "Insensitive",
	KindRange:        "Range",
	KindAny:          "Any",
	KindStartOfInput: "StartOfInput",
	KindEndOfInput:   "EndOfInput",
	KindNewline:      "Newline",
	KindSkip:         "Skip",
	KindSequence:     "Sequence",
	KindChoice:       "Choice",
	KindOptional:     "Optional",
	KindRepeat:       "Repeat",
	KindPositive:     "Positive",
	KindNegative:     "Negative",
	KindRestorable:   "Restorable",
	KindPush:         "Push",
	KindPeek:         "Peek",
	KindPeekAll:      "PeekAll",
	KindPop:          "Pop",
	KindPopAll:       "PopAll",
	KindPeekSlice:    "PeekSlice",
	KindDrop:         "Drop",
	KindRule:         "Rule",
	KindTag:          "Tag",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Node is one node of the concrete syntax tree. Which fields are set depends
// on Kind:
//
//   - KindSequence, KindRepeat: Children in input order
//   - KindChoice: one child, Alt is 0 for the first alternative, 1 for the second
//   - KindOptional: one child when present, none when absent
//   - KindPositive, KindPush, KindRestorable: the inner node
//   - KindRule: Rule, and the body as only child (atomic rules have none)
//   - KindTag: Tag and the tagged node
//   - KindRange, KindAny: Char
//
// Text is only ever read through Span; nodes hold no copy of the input.
type Node struct {
	Kind     Kind
	Span     Span
	Rule     string
	Tag      string
	Char     rune
	Alt      int
	Children []*Node
}

func (n *Node) Text() string {
	return n.Span.String()
}

// Child returns the first child, or nil.
func (n *Node) Child() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Present reports whether an optional node matched.
func (n *Node) Present() bool {
	return n.Kind != KindOptional || len(n.Children) > 0
}

// Name returns the rule or tag name of a named node.
func (n *Node) Name() string {
	switch n.Kind {
	case KindRule:
		return n.Rule
	case KindTag:
		return n.Tag
	}
	return ""
}

// Walk calls fn for n and every node below it, parents first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Named returns the nearest rule and tag nodes below n, in input order.
func (n *Node) Named() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name() != "" {
			out = append(out, c)
			continue
		}
		out = append(out, c.Named()...)
	}
	return out
}

// Find returns the first node below n, n included, named name.
func (n *Node) Find(name string) *Node {
	if n.Name() == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// String renders the named nodes of the tree as nested s-expressions.
func (n *Node) String() string {
	var b strings.Builder
	n.format(&b)
	return b.String()
}

func (n *Node) format(b *strings.Builder) {
	named := n.Named()
	if n.Name() == "" {
		for i, c := range named {
			if i > 0 {
				b.WriteByte(' ')
			}
			c.format(b)
		}
		return
	}
	b.WriteString("(")
	b.WriteString(n.Name())
	if len(named) == 0 {
		fmt.Fprintf(b, " %q", n.Text())
	}
	for _, c := range named {
		b.WriteByte(' ')
		c.format(b)
	}
	b.WriteString(")")
}

// BuilderFunc turns a named node into a value. args holds the values built
// for the nearest named nodes below it.
type BuilderFunc func(n *Node, args []any) (any, error)

// Build folds the tree into a value, bottom up. Named nodes without a
// builder pass on their single argument, their list of arguments, or their
// text when they have none.
func (n *Node) Build(builders map[string]BuilderFunc) (any, error) {
	named := n.Named()
	args := make([]any, 0, len(named))
	for _, c := range named {
		v, err := c.Build(builders)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if fn, ok := builders[n.Name()]; ok && n.Name() != "" {
		v, err := fn(n, args)
		if err != nil {
			return nil, fmt.Errorf("building %s at %v: %w", n.Name(), n.Span.Start(), err)
		}
		return v, nil
	}
	switch len(args) {
	case 0:
		if n.Name() == "" {
			return nil, nil
		}
		return n.Text(), nil
	case 1:
		return args[0], nil
	}
	return args, nil
}
