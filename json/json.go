// Package json is an RFC 8259 JSON grammar. Numbers are decoded into
// decimal.Decimal so no precision is lost.
package json

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/shopspring/decimal"

	"github.com/tef/ezpeg"
)

var JsonParser = ezpeg.MustBuildParser(func(g *ezpeg.Grammar) {
	g.Start = "document"
	g.Whitespace = []string{" ", "\t", "\n", "\r"}
	// every repetition consumes input, so no cap is needed
	g.Config = ezpeg.Config{RepeatLimit: -1}

	g.Silent("document", func() {
		g.StartOfInput()
		g.Call("value")
		g.EndOfInput()
	})

	g.Silent("value", func() {
		g.Choice(func() {
			g.Call("object")
		}, func() {
			g.Call("array")
		}, func() {
			g.Call("string")
		}, func() {
			g.Call("number")
		}, func() {
			g.Call("true")
		}, func() {
			g.Call("false")
		}, func() {
			g.Call("null")
		})
	})

	g.Define("object", func() {
		g.Literal("{")
		g.Optional(func() {
			g.Call("pair")
			g.Repeat(0, 0, func() {
				g.Literal(",")
				g.Call("pair")
			})
		})
		g.Literal("}")
	})

	g.Define("pair", func() {
		g.Call("string")
		g.Literal(":")
		g.Call("value")
	})

	g.Define("array", func() {
		g.Literal("[")
		g.Optional(func() {
			g.Call("value")
			g.Repeat(0, 0, func() {
				g.Literal(",")
				g.Call("value")
			})
		})
		g.Literal("]")
	})

	g.Atomic("string", func() {
		g.Literal("\"")
		g.Repeat(0, 0, func() {
			g.Choice(func() {
				g.Literal("\\u")
				g.Repeat(4, 4, func() {
					g.Range("0-9", "a-f", "A-F")
				})
			}, func() {
				g.Literal("\\")
				g.Literal("\"", "\\", "/", "b", "f", "n", "r", "t")
			}, func() {
				g.Range("\"", "\\", "\x00-\x1f").Invert()
			})
		})
		g.Literal("\"")
	})

	g.Atomic("number", func() {
		g.Optional(func() {
			g.Literal("-")
		})
		g.Choice(func() {
			g.Literal("0")
		}, func() {
			g.Range("1-9")
			g.Repeat(0, 0, func() {
				g.Range("0-9")
			})
		})
		g.Optional(func() {
			g.Literal(".")
			g.Repeat(1, 0, func() {
				g.Range("0-9")
			})
		})
		g.Optional(func() {
			g.Literal("e", "E")
			g.Optional(func() {
				g.Literal("+", "-")
			})
			g.Repeat(1, 0, func() {
				g.Range("0-9")
			})
		})
	})

	g.Atomic("true", func() {
		g.Literal("true")
	})

	g.Atomic("false", func() {
		g.Literal("false")
	})

	g.Atomic("null", func() {
		g.Literal("null")
	})
})

type member struct {
	key   string
	value any
}

var builders = map[string]ezpeg.BuilderFunc{
	"object": func(n *ezpeg.Node, args []any) (any, error) {
		m := make(map[string]any, len(args))
		for _, a := range args {
			p := a.(member)
			m[p.key] = p.value
		}
		return m, nil
	},
	"pair": func(n *ezpeg.Node, args []any) (any, error) {
		return member{key: args[0].(string), value: args[1]}, nil
	},
	"array": func(n *ezpeg.Node, args []any) (any, error) {
		if args == nil {
			args = []any{}
		}
		return args, nil
	},
	"string": func(n *ezpeg.Node, args []any) (any, error) {
		return unquote(n.Text())
	},
	"number": func(n *ezpeg.Node, args []any) (any, error) {
		return decimal.NewFromString(n.Text())
	},
	"true": func(n *ezpeg.Node, args []any) (any, error) {
		return true, nil
	},
	"false": func(n *ezpeg.Node, args []any) (any, error) {
		return false, nil
	},
	"null": func(n *ezpeg.Node, args []any) (any, error) {
		return nil, nil
	},
}

// Parse decodes a JSON document into map[string]any, []any, string,
// decimal.Decimal, bool or nil.
func Parse(s string) (any, error) {
	tree, err := JsonParser.Parse(s)
	if err != nil {
		return nil, err
	}
	return Build(tree)
}

// Build decodes a tree returned by JsonParser.
func Build(tree *ezpeg.Node) (any, error) {
	return tree.Build(builders)
}

// Valid reports whether s is a JSON document.
func Valid(s string) bool {
	return JsonParser.Accept(s)
}

// unquote decodes a string token, quotes included. The grammar has already
// checked every escape.
func unquote(s string) (string, error) {
	s = s[1 : len(s)-1]
	if !strings.Contains(s, "\\") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			r, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad escape %q: %w", s[i-1:i+5], err)
			}
			i += 4
			code := rune(r)
			if utf16.IsSurrogate(code) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if low, err := strconv.ParseUint(s[i+3:i+7], 16, 32); err == nil {
					if dec := utf16.DecodeRune(code, rune(low)); dec != unicode.ReplacementChar {
						code = dec
						i += 6
					}
				}
			}
			b.WriteRune(code)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}
