package ezpeg

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (p *Parser) testGrammar(accept []string, reject []string) bool {
	return p.testRule(p.start, accept, reject)
}

func (p *Parser) testRule(name string, accept []string, reject []string) bool {
	for _, s := range accept {
		if _, err := p.ParseRule(name, s); err != nil {
			return false
		}
	}
	for _, s := range reject {
		if _, err := p.ParseRule(name, s); err == nil {
			return false
		}
	}
	return true
}

func TestErrors(t *testing.T) {
	var g *Grammar
	var err error

	// grammars need a start and one rule

	_, err = BuildGrammar(func(g *Grammar) {})
	if err == nil {
		t.Error("empty grammar should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
		assert.True(t, errors.Is(err, ErrNoStartRule))
	}

	// start rule must exist
	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "missing"
	})
	if err == nil {
		t.Error("missing start should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
		assert.True(t, errors.Is(err, ErrNoStartRule))
	}

	// all called rules must be defined
	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {
			g.Call("exrp")
		})
	})
	if err == nil {
		t.Error("missing rule should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
		assert.True(t, errors.Is(err, ErrMissingRule))
		assert.Contains(t, err.Error(), `did you mean "expr"?`)
		assert.Contains(t, err.Error(), `(inside "expr" at grammar_test.go:`)
	}

	// all defined rules must be called
	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {
		})
		g.Define("expr2", func() {
		})
	})

	if err == nil {
		t.Error("unused rule should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
		assert.True(t, errors.Is(err, ErrUnusedRule))
	}

	// rules cannot be defined twice
	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {
		})
		g.Atomic("expr", func() {
		})
	})

	if err == nil {
		t.Error("redefined rule should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
		assert.True(t, errors.Is(err, ErrRedefinedRule))
	}

	// nested defines should fail
	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {
			g.Define("expr2", func() {
			})
		})
	})

	if err == nil {
		t.Error("nested define should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
		assert.True(t, errors.Is(err, ErrBuilderMisuse))
	}
	// operators outside defines should fail
	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {})
		g.Literal("true")
	})

	if err == nil {
		t.Error("builder outside define should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
		assert.True(t, errors.Is(err, ErrBuilderMisuse))
	}

	// calling builders outside should fail
	g, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {})
	})
	require.NoError(t, err)
	g.Define("expr2", func() {})

	if g.Err() == nil {
		t.Error("define should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", g.Err())
	}
	// calling builders outside should fail
	g = &Grammar{}
	g.Define("expr2", func() {})

	if g.Err() == nil {
		t.Error("define should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", g.Err())
	}
	// invert must be called after Range
	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {
			ro := g.Range("0-9")
			g.Literal("x")
			ro.Invert()
		})
	})

	if err == nil {
		t.Error("bad invert should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
	}

	// ranges are a character or a pair
	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {
			g.Range("z-a")
		})
	})

	if err == nil {
		t.Error("bad range should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
	}

	_, err = BuildGrammar(func(g *Grammar) {
		g.Start = "expr"

		g.Define("expr", func() {
			g.Repeat(3, 1, func() {
				g.Literal("x")
			})
		})
	})

	if err == nil {
		t.Error("bad repeat should raise error")
	} else {
		t.Logf("test grammar raised error:\n %v", err)
	}
}

func TestLogger(t *testing.T) {
	var parser *Parser
	var err error
	var ok bool

	logger, hook := logtest.NewNullLogger()

	parser, err = BuildParser(func(g *Grammar) {
		g.Start = "expr"
		g.Logger = logger

		g.Define("expr", func() {
			g.Print("TEST")
			g.Literal("TEST")

		})
	})

	if err != nil {
		t.Errorf("error defining grammar:\n%v", err)
	} else {
		ok = parser.testGrammar(
			[]string{"TEST"},
			[]string{""},
		)
		if !ok {
			t.Error("print test case failed to parse")
		}
		if len(hook.AllEntries()) < 2 { // two tests above
			t.Error("print test case failed to log")
		} else {
			entry := hook.AllEntries()[0]
			assert.Equal(t, "TEST", entry.Message)
			assert.Equal(t, "expr", entry.Data["rule"])
		}
	}

	hook.Reset()

	parser, err = BuildParser(func(g *Grammar) {
		g.Start = "expr"
		g.Logger = logger

		g.Define("expr", func() {
			g.Trace(func() {
				g.Call("test")
			})
		})
		g.Define("test", func() {
			g.Literal("TEST")
		})
	})

	if err != nil {
		t.Errorf("error defining grammar:\n%v", err)
	} else {
		ok = parser.testGrammar(
			[]string{"TEST"},
			[]string{""},
		)
		if !ok {
			t.Error("trace test case failed to parse")
		}
		if len(hook.AllEntries()) < 4 { // two tests above * two trace messages (enter, exit)
			t.Error("trace test case failed to log")
		} else {
			last := hook.LastEntry()
			assert.Equal(t, "exit", last.Message)
			assert.Equal(t, false, last.Data["matched"])
		}
	}

	hook.Reset()
	logger.SetLevel(logrus.DebugLevel)
	defer logger.SetLevel(logrus.InfoLevel)

	parser = parser.WithConfig(Config{Trace: true}).WithLogger(logger)
	_, err = parser.Parse("TEST")
	require.NoError(t, err)
	var rules []string
	for _, e := range hook.AllEntries() {
		if e.Message == "rule" {
			rules = append(rules, e.Data["rule"].(string))
		}
	}
	assert.Equal(t, []string{"test", "expr"}, rules)
}

func TestParser(t *testing.T) {
	var parser *Parser
	var err error
	var ok bool

	parser, err = BuildParser(func(g *Grammar) {
		g.Start = "start"
		g.Define("start", func() {
			g.Call("test_literal")
			g.Call("test_optional")
			g.Call("test_range")
			g.Call("test_inverted")
			g.Call("test_repeat")
			g.Call("test_insensitive")
			g.Call("test_lookahead")
			g.Call("test_builtin")
		})

		g.Define("test_literal", func() {
			g.Literal("example")
		})
		g.Define("test_optional", func() {
			g.Optional(func() {
				g.Literal("1")
			})
			g.Literal("2")
			g.Optional(func() {
				g.Literal("3")
			})
			g.Literal("4")
		})
		g.Define("test_range", func() {
			g.Range("0-9")
		})
		g.Define("test_inverted", func() {
			g.Range("0-9").Invert()
		})
		g.Define("test_repeat", func() {
			g.Repeat(1, 3, func() {
				g.Literal("ab")
			})
		})
		g.Define("test_insensitive", func() {
			g.Insensitive("true", "false")
		})
		g.Define("test_lookahead", func() {
			g.Reject(func() {
				g.Literal("if")
			})
			g.Lookahead(func() {
				g.Range("a-z")
			})
			g.Repeat(0, 0, func() {
				g.Range("a-z")
			})
		})
		g.Define("test_builtin", func() {
			g.Match(ASCIIHexDigit())
			g.Repeat(0, 0, func() {
				g.Match(ASCIIHexDigit())
			})
		})
	})

	if err != nil {
		t.Errorf("error defining grammar:\n%v", err)
	} else {
		ok = parser.testRule("test_literal",
			[]string{"example"},
			[]string{"", "bad", "longer example", "example bad"},
		)
		if !ok {
			t.Error("literal test case failed")
		}
		ok = parser.testRule("test_optional",
			[]string{"24", "124", "234", "1234"},
			[]string{"", "1", "34", "23", "123"},
		)
		if !ok {
			t.Error("optional test case failed")
		}
		ok = parser.testRule("test_range",
			[]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
			[]string{"", "00", "a0", "0a", "a0a"},
		)
		if !ok {
			t.Error("range test case failed")
		}
		ok = parser.testRule("test_inverted",
			[]string{"a", "b", "c", "A", "B", "C"},
			[]string{"", "0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
		)
		if !ok {
			t.Error("inverted range test case failed")
		}
		ok = parser.testRule("test_repeat",
			[]string{"ab", "abab", "ababab"},
			[]string{"", "a", "abababab"},
		)
		if !ok {
			t.Error("repeat test case failed")
		}
		ok = parser.testRule("test_insensitive",
			[]string{"true", "TRUE", "False"},
			[]string{"", "yes"},
		)
		if !ok {
			t.Error("insensitive test case failed")
		}
		ok = parser.testRule("test_lookahead",
			[]string{"a", "fi", "elif"},
			[]string{"", "if", "iff", "1"},
		)
		if !ok {
			t.Error("lookahead test case failed")
		}
		ok = parser.testRule("test_builtin",
			[]string{"0", "cafe", "BEEF"},
			[]string{"", "food"},
		)
		if !ok {
			t.Error("builtin test case failed")
		}
	}
}

func TestGrammar(t *testing.T) {
	var parser *Parser
	var err error
	var ok bool

	parser, err = BuildParser(func(g *Grammar) {
		g.Start = "expr"
		g.Whitespace = []string{" ", "\t"}

		g.Define("expr", func() {
			g.Call("boolean")
			g.Repeat(0, 0, func() {
				g.Literal("and", "or")
				g.Call("boolean")
			})
		})

		g.Silent("boolean", func() {
			g.Choice(func() {
				g.Call("truerule")
			}, func() {
				g.Call("falserule")
			})
		})

		g.Define("truerule", func() {
			g.Literal("true")
		})

		g.Define("falserule", func() {
			g.Literal("false")
		})
	})

	if err != nil {
		t.Errorf("error defining grammar:\n%v", err)
	} else {
		ok = parser.testGrammar(
			[]string{"true", "false", "true and false", "true\tor  false and true "},
			[]string{"", "true1", "0false", "null", "true and"},
		)
		if !ok {
			t.Error("rules test case failed")
		}

		node, err := parser.Parse("true or false")
		require.NoError(t, err)
		assert.Equal(t, `(expr (truerule "true") (falserule "false"))`, node.String())

		_, err = parser.Parse("true or maybe")
		perr := parseError(t, err)
		assert.Equal(t, 8, perr.Offset)
		assert.Equal(t, []string{"truerule", "falserule"}, perr.Expected)
	}
}

func TestStackGrammar(t *testing.T) {
	// raw strings: r#"..."# with any number of hashes
	parser, err := BuildParser(func(g *Grammar) {
		g.Start = "raw"

		g.Atomic("raw", func() {
			g.Literal("r")
			g.Push(func() {
				g.Repeat(0, 0, func() {
					g.Literal("#")
				})
			})
			g.Literal("\"")
			g.Capture("body", func() {
				g.Repeat(0, 0, func() {
					g.Reject(func() {
						g.Literal("\"")
						g.Peek()
					})
					g.Any()
				})
			})
			g.Literal("\"")
			g.Pop()
		})
	})
	require.NoError(t, err)

	ok := parser.testGrammar(
		[]string{`r""`, `r#"a"b"#`, `r##"x"#y"##`},
		[]string{`r"a"#`, `r#"a"`, `r##"a"#`},
	)
	assert.True(t, ok)

	node, err := parser.Parse(`r#"a"b"#`)
	require.NoError(t, err)
	assert.Empty(t, node.Children)
	assert.Equal(t, `r#"a"b"#`, node.Text())
}

func TestPrebuiltRules(t *testing.T) {
	parser, err := BuildParser(func(g *Grammar) {
		g.Start = "list"
		g.Whitespace = []string{" "}

		g.Rule("list", RuleNormal, Sequence(Literal("["), Call("number"), Repeat(Sequence(Literal(","), Call("number"))), Literal("]")))
		g.Atomic("number", func() {
			g.Optional(func() {
				g.Literal("-")
			})
			g.Match(ASCIIDigit())
			g.Repeat(0, 0, func() {
				g.Match(ASCIIDigit())
			})
		})
	})
	require.NoError(t, err)

	assert.True(t, parser.Accept("[1, -2 ,30]"))
	assert.False(t, parser.Accept("[- 1]"))
	assert.Equal(t, []string{"WHITESPACE", "list", "number"}, parser.Rules())

	_, err = BuildParser(func(g *Grammar) {
		g.Start = "list"
		g.Rule("list", RuleNormal, Call("nmber"))
		g.Define("number", func() {
			g.Match(ASCIIDigit())
		})
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRule))
	assert.Contains(t, err.Error(), `did you mean "number"?`)
}

func TestCapture(t *testing.T) {
	var parser *Parser
	var err error
	var ok bool
	var tree *Node

	countTags := func(tree *Node) int {
		n := 0
		tree.Walk(func(node *Node) {
			if node.Kind == KindTag {
				t.Logf("node %q %q", node.Tag, node.Text())
				n++
			}
		})
		return n
	}

	parser, err = BuildParser(func(g *Grammar) {
		g.Start = "start"
		g.Define("start", func() {
			g.Capture("main", func() {
				g.Literal("A")
				g.Choice(func() {
					g.Capture("bcd", func() {
						g.Literal("BCD")
					})

				}, func() {
					g.Capture("b", func() {
						g.Literal("B")
						g.Capture("c", func() {
							g.Literal("C")
						})
					})
				})
			})
		})
	})

	if err != nil {
		t.Errorf("error defining grammar:\n%v", err)
	} else {
		ok = parser.testGrammar(
			[]string{"ABC", "ABCD"},
			[]string{""},
		)
		if !ok {
			t.Error("literal test case failed")
		}

		tree, err = parser.Parse("ABC")

		if err != nil {
			t.Error("literal test case failed")
		} else if countTags(tree) != 3 {
			t.Error("wrong nodes count")
		}

		tree, err = parser.Parse("ABCD")

		if err != nil {
			t.Error("literal test case failed")
		} else if countTags(tree) != 2 {
			t.Error("wrong node count")
		}
	}
	parser, err = BuildParser(func(g *Grammar) {
		g.Start = "start"
		g.Define("start", func() {
			g.Capture("main", func() {
				g.Literal("A")
			})
		})
	})

	if err != nil {
		t.Errorf("error defining grammar:\n%v", err)
	} else {
		ok = parser.testGrammar(
			[]string{"A"},
			[]string{""},
		)
		if !ok {
			t.Error("literal test case failed")
		}

		tree, err = parser.Parse("A")

		if err != nil {
			t.Error("literal test case failed")
		} else if countTags(tree) != 1 {
			t.Error("wrong nodes count")
		}

		builders := map[string]BuilderFunc{
			"main": func(n *Node, args []any) (any, error) {
				s := n.Text()
				return &s, nil
			},
		}

		out, err := tree.Build(builders)

		if err != nil || out == nil {
			t.Error("build failed")
		} else {
			s, ok := out.(*string)
			if ok && *s == "A" {
				t.Log("build success")
			} else {
				t.Errorf("build failed, got %v:", out)
			}
		}
	}
}

func TestGrammarString(t *testing.T) {
	g, err := BuildGrammar(func(g *Grammar) {
		g.Start = "pair"
		g.Define("pair", func() {
			g.Call("word")
			g.Literal("=")
			g.Call("word")
		})
		g.Atomic("word", func() {
			g.Repeat(1, 0, func() {
				g.Range("a-z", "_")
			})
		})
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(g.String()), "\n")
	assert.Equal(t, []string{
		`pair = (word ~ "=" ~ word)`,
		`word (atomic) = 'a'..'z' | '_'+`,
	}, lines)
}
