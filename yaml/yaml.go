// Package yaml parses an indentation based subset of YAML: block mappings,
// block sequences, plain, single and double quoted scalars, and comments.
// Nesting is tracked by pushing each level's indentation onto the parser
// stack.
package yaml

import (
	"strconv"
	"strings"

	"github.com/tef/ezpeg"
)

var YamlParser = ezpeg.MustBuildParser(func(g *ezpeg.Grammar) {
	g.Start = "document"
	g.Config = ezpeg.Config{RepeatLimit: -1}

	g.CompoundAtomic("document", func() {
		g.StartOfInput()
		g.Repeat(0, 0, func() {
			g.Call("blank_line")
		})
		g.Optional(func() {
			g.Choice(func() {
				g.Call("mapping")
			}, func() {
				g.Call("sequence")
			}, func() {
				g.Call("scalar")
				g.Call("eol")
			})
		})
		g.Call("spaces")
		g.Optional(func() {
			g.Call("comment")
		})
		g.EndOfInput()
	})

	g.Define("mapping", func() {
		g.Call("entry")
		g.Repeat(0, 0, func() {
			g.PeekAll()
			g.Call("entry")
		})
	})

	g.Define("entry", func() {
		g.Call("key")
		g.Call("spaces")
		g.Literal(":")
		g.Call("value")
	})

	g.Define("sequence", func() {
		g.Call("item")
		g.Repeat(0, 0, func() {
			g.PeekAll()
			g.Call("item")
		})
	})

	g.Define("item", func() {
		g.Literal("-")
		g.Call("value")
	})

	// what follows "key:" or "-"
	g.Silent("value", func() {
		g.Choice(func() {
			g.Repeat(1, 0, func() {
				g.Literal(" ")
			})
			g.Call("scalar")
			g.Call("eol")
		}, func() {
			g.Call("eol")
			g.Call("indented")
		}, func() {
			g.Call("eol")
			g.PeekAll()
			g.Call("sequence")
		}, func() {
			g.Call("eol")
		})
	})

	g.Silent("indented", func() {
		g.Restorable(func() {
			g.PeekAll()
			g.Push(func() {
				g.Repeat(1, 0, func() {
					g.Literal(" ")
				})
			})
			g.Choice(func() {
				g.Call("mapping")
			}, func() {
				g.Call("sequence")
			})
			g.Drop()
		})
	})

	g.Define("key", func() {
		g.Choice(func() {
			g.Call("double")
		}, func() {
			g.Call("single")
		}, func() {
			g.Capture("name", func() {
				g.Range("a-z", "A-Z", "0-9", "_")
				g.Repeat(0, 0, func() {
					g.Range("a-z", "A-Z", "0-9", "_", "-", ".")
				})
			})
		})
	})

	g.Silent("scalar", func() {
		g.Choice(func() {
			g.Call("double")
		}, func() {
			g.Call("single")
		}, func() {
			g.Call("plain")
		})
	})

	g.Define("double", func() {
		g.Literal("\"")
		g.Repeat(0, 0, func() {
			g.Choice(func() {
				g.Literal("\\")
				g.Range("\n", "\r").Invert()
			}, func() {
				g.Range("\"", "\\", "\n", "\r").Invert()
			})
		})
		g.Literal("\"")
	})

	g.Define("single", func() {
		g.Literal("'")
		g.Repeat(0, 0, func() {
			g.Choice(func() {
				g.Literal("''")
			}, func() {
				g.Range("'", "\n", "\r").Invert()
			})
		})
		g.Literal("'")
	})

	g.Define("plain", func() {
		g.Choice(func() {
			g.Literal("-", "?", ":")
			g.Range(" ", "\t", "\n", "\r").Invert()
		}, func() {
			g.Range(
				"-", "?", ":", ",", "[", "]", "{", "}",
				"#", "&", "*", "!", "|", ">", "'", "\"",
				"%", "@", "`", " ", "\t", "\n", "\r",
			).Invert()
		})
		g.Repeat(0, 0, func() {
			g.Reject(func() {
				g.Call("plain_end")
			})
			g.Range("\n", "\r").Invert()
		})
	})

	// a plain scalar stops before ": ", trailing spaces and " #"
	g.Silent("plain_end", func() {
		g.Choice(func() {
			g.Literal(":")
			g.Choice(func() {
				g.Literal(" ")
			}, func() {
				g.Newline()
			}, func() {
				g.EndOfInput()
			})
		}, func() {
			g.Repeat(1, 0, func() {
				g.Literal(" ")
			})
			g.Choice(func() {
				g.Literal("#")
			}, func() {
				g.Newline()
			}, func() {
				g.EndOfInput()
			})
		})
	})

	g.Silent("spaces", func() {
		g.Repeat(0, 0, func() {
			g.Literal(" ")
		})
	})

	g.Silent("comment", func() {
		g.Literal("#")
		g.Repeat(0, 0, func() {
			g.Range("\n", "\r").Invert()
		})
	})

	g.Silent("blank_line", func() {
		g.Call("spaces")
		g.Optional(func() {
			g.Call("comment")
		})
		g.Newline()
	})

	g.Silent("eol", func() {
		g.Call("spaces")
		g.Optional(func() {
			g.Call("comment")
		})
		g.Choice(func() {
			g.Newline()
			g.Repeat(0, 0, func() {
				g.Call("blank_line")
			})
		}, func() {
			g.EndOfInput()
		})
	})
})

type member struct {
	key   string
	value any
}

func first(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

var builders = map[string]ezpeg.BuilderFunc{
	"document": func(n *ezpeg.Node, args []any) (any, error) {
		return first(args), nil
	},
	"mapping": func(n *ezpeg.Node, args []any) (any, error) {
		m := make(map[string]any, len(args))
		for _, a := range args {
			e := a.(member)
			m[e.key] = e.value
		}
		return m, nil
	},
	"entry": func(n *ezpeg.Node, args []any) (any, error) {
		return member{key: args[0].(string), value: first(args[1:])}, nil
	},
	"sequence": func(n *ezpeg.Node, args []any) (any, error) {
		return args, nil
	},
	"item": func(n *ezpeg.Node, args []any) (any, error) {
		return first(args), nil
	},
	"plain": func(n *ezpeg.Node, args []any) (any, error) {
		return resolve(n.Text()), nil
	},
	"double": func(n *ezpeg.Node, args []any) (any, error) {
		return strconv.Unquote(n.Text())
	},
	"single": func(n *ezpeg.Node, args []any) (any, error) {
		s := n.Text()
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), nil
	},
}

// resolve types a plain scalar: null, bool, int64, float64 or string.
func resolve(s string) any {
	switch s {
	case "~", "null", "Null", "NULL":
		return nil
	case "true", "True", "TRUE":
		return true
	case "false", "False", "FALSE":
		return false
	}
	if !strings.ContainsAny(s, "0123456789") {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Parse decodes a document into map[string]any, []any, string, int64,
// float64, bool or nil.
func Parse(s string) (any, error) {
	tree, err := YamlParser.Parse(s)
	if err != nil {
		return nil, err
	}
	return Build(tree)
}

// Build decodes a tree returned by YamlParser.
func Build(tree *ezpeg.Node) (any, error) {
	return tree.Build(builders)
}
