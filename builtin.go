package ezpeg

// charClass matches one character inside, or with invert outside, any of
// ranges.
type charClass struct {
	name   string
	ranges [][2]rune
	invert bool
	kind   error
}

func (m *charClass) match(pos Position, st *state, _ bool) (Position, *Node, bool) {
	next, r, ok := pos.matchCharBy(func(r rune) bool {
		for _, rg := range m.ranges {
			if rg[0] <= r && r <= rg[1] {
				return !m.invert
			}
		}
		return m.invert
	})
	if !ok {
		kind := m.kind
		if kind == nil {
			kind = ErrUnmatchedBuiltin
		}
		st.tracker.RecordFail(kind, m.name, pos)
		return pos, nil, false
	}
	return next, &Node{Kind: KindRange, Span: pos.SpanTo(next), Char: r}, true
}

func (m *charClass) String() string {
	return m.name
}

func class(name string, ranges ...[2]rune) Matcher {
	return &charClass{name: name, ranges: ranges}
}

func ASCIIDigit() Matcher        { return class("ASCII_DIGIT", [2]rune{'0', '9'}) }
func ASCIINonZeroDigit() Matcher { return class("ASCII_NONZERO_DIGIT", [2]rune{'1', '9'}) }
func ASCIIBinDigit() Matcher     { return class("ASCII_BIN_DIGIT", [2]rune{'0', '1'}) }
func ASCIIOctDigit() Matcher     { return class("ASCII_OCT_DIGIT", [2]rune{'0', '7'}) }

func ASCIIHexDigit() Matcher {
	return class("ASCII_HEX_DIGIT", [2]rune{'0', '9'}, [2]rune{'a', 'f'}, [2]rune{'A', 'F'})
}

func ASCIIAlphaLower() Matcher { return class("ASCII_ALPHA_LOWER", [2]rune{'a', 'z'}) }
func ASCIIAlphaUpper() Matcher { return class("ASCII_ALPHA_UPPER", [2]rune{'A', 'Z'}) }

func ASCIIAlpha() Matcher {
	return class("ASCII_ALPHA", [2]rune{'a', 'z'}, [2]rune{'A', 'Z'})
}

func ASCIIAlphanumeric() Matcher {
	return class("ASCII_ALPHANUMERIC", [2]rune{'a', 'z'}, [2]rune{'A', 'Z'}, [2]rune{'0', '9'})
}

// ASCII matches any character below 0x80.
func ASCII() Matcher { return class("ASCII", [2]rune{0, 0x7f}) }

type alwaysFail struct{}

// AlwaysFail never matches and records nothing.
func AlwaysFail() Matcher {
	return alwaysFail{}
}

func (alwaysFail) match(pos Position, _ *state, _ bool) (Position, *Node, bool) {
	return pos, nil, false
}

func (alwaysFail) String() string {
	return "FAIL"
}

type empty struct{}

// Empty matches the empty string.
func Empty() Matcher {
	return empty{}
}

func (empty) match(pos Position, _ *state, _ bool) (Position, *Node, bool) {
	return pos, &Node{Kind: KindEmpty, Span: pos.SpanTo(pos)}, true
}

func (empty) String() string {
	return "EMPTY"
}
