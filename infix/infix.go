// Package infix is a calculator: arithmetic with the usual precedence,
// right associative powers, unary minus, parentheses, a few functions, and
// variable assignment.
package infix

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tef/ezpeg"
)

var (
	ErrUndefined      = errors.New("undefined")
	ErrDivisionByZero = errors.New("division by zero")
	ErrArity          = errors.New("wrong number of arguments")
)

var InfixParser = ezpeg.MustBuildParser(func(g *ezpeg.Grammar) {
	g.Start = "statement"
	g.Whitespace = []string{" ", "\t"}
	g.Config = ezpeg.Config{RepeatLimit: -1}

	g.Silent("statement", func() {
		g.StartOfInput()
		g.Choice(func() {
			g.Call("assign")
		}, func() {
			g.Call("sum")
		})
		g.EndOfInput()
	})

	g.Define("assign", func() {
		g.Call("target")
		g.Literal("=")
		g.Choice(func() {
			g.Call("assign")
		}, func() {
			g.Call("sum")
		})
	})

	g.Define("sum", func() {
		g.Call("product")
		g.Repeat(0, 0, func() {
			g.Call("add_op")
			g.Call("product")
		})
	})

	g.Define("product", func() {
		g.Call("unary")
		g.Repeat(0, 0, func() {
			g.Call("mul_op")
			g.Call("unary")
		})
	})

	g.Silent("unary", func() {
		g.Choice(func() {
			g.Call("negate")
		}, func() {
			g.Call("power")
		})
	})

	g.Define("negate", func() {
		g.Literal("-")
		g.Call("unary")
	})

	// 2^3^2 is 2^(3^2), and -2^2 is -(2^2)
	g.Define("power", func() {
		g.Call("primary")
		g.Optional(func() {
			g.Literal("^")
			g.Call("unary")
		})
	})

	g.Silent("primary", func() {
		g.Choice(func() {
			g.Call("call")
		}, func() {
			g.Call("number")
		}, func() {
			g.Call("variable")
		}, func() {
			g.Literal("(")
			g.Call("sum")
			g.Literal(")")
		})
	})

	g.Define("call", func() {
		g.Call("function")
		g.Literal("(")
		g.Call("sum")
		g.Repeat(0, 0, func() {
			g.Literal(",")
			g.Call("sum")
		})
		g.Literal(")")
	})

	g.Atomic("add_op", func() {
		g.Literal("+", "-")
	})

	g.Atomic("mul_op", func() {
		g.Literal("*", "/", "%")
	})

	g.Atomic("number", func() {
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

	g.Atomic("variable", func() {
		g.Call("identifier")
	})

	g.Atomic("target", func() {
		g.Call("identifier")
	})

	g.Atomic("function", func() {
		g.Call("identifier")
	})

	g.Silent("identifier", func() {
		g.Range("a-z", "A-Z", "_")
		g.Repeat(0, 0, func() {
			g.Range("a-z", "A-Z", "0-9", "_")
		})
	})
})

type function struct {
	arity int // -1 for one or more
	fn    func(args []float64) float64
}

var functions = map[string]function{
	"abs":  {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"sqrt": {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"min": {-1, func(a []float64) float64 {
		m := a[0]
		for _, x := range a[1:] {
			m = math.Min(m, x)
		}
		return m
	}},
	"max": {-1, func(a []float64) float64 {
		m := a[0]
		for _, x := range a[1:] {
			m = math.Max(m, x)
		}
		return m
	}},
}

// Env holds variables. Assignments made by Eval are kept in it.
type Env map[string]float64

// Eval evaluates one statement: an expression, or a chain of assignments
// such as "a = b = 2".
func (e Env) Eval(s string) (float64, error) {
	tree, err := InfixParser.Parse(s)
	if err != nil {
		return 0, err
	}
	return e.Build(tree)
}

// Build evaluates a tree returned by InfixParser.
func (e Env) Build(tree *ezpeg.Node) (float64, error) {
	v, err := tree.Build(e.builders())
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// Eval evaluates s with no variables defined.
func Eval(s string) (float64, error) {
	return Env{}.Eval(s)
}

func floats(args []any) []float64 {
	out := make([]float64, len(args))
	for i, a := range args {
		out[i] = a.(float64)
	}
	return out
}

func fold(args []any) (float64, error) {
	acc := args[0].(float64)
	for i := 1; i+1 < len(args); i += 2 {
		y := args[i+1].(float64)
		switch args[i].(string) {
		case "+":
			acc += y
		case "-":
			acc -= y
		case "*":
			acc *= y
		case "/":
			if y == 0 {
				return 0, ErrDivisionByZero
			}
			acc /= y
		case "%":
			if y == 0 {
				return 0, ErrDivisionByZero
			}
			acc = math.Mod(acc, y)
		}
	}
	return acc, nil
}

func (e Env) builders() map[string]ezpeg.BuilderFunc {
	return map[string]ezpeg.BuilderFunc{
		"assign": func(n *ezpeg.Node, args []any) (any, error) {
			e[args[0].(string)] = args[1].(float64)
			return args[1], nil
		},
		"sum": func(n *ezpeg.Node, args []any) (any, error) {
			return fold(args)
		},
		"product": func(n *ezpeg.Node, args []any) (any, error) {
			return fold(args)
		},
		"negate": func(n *ezpeg.Node, args []any) (any, error) {
			return -args[0].(float64), nil
		},
		"power": func(n *ezpeg.Node, args []any) (any, error) {
			if len(args) == 1 {
				return args[0], nil
			}
			return math.Pow(args[0].(float64), args[1].(float64)), nil
		},
		"call": func(n *ezpeg.Node, args []any) (any, error) {
			name := args[0].(string)
			f, ok := functions[name]
			if !ok {
				return nil, fmt.Errorf("function %q: %w", name, ErrUndefined)
			}
			params := floats(args[1:])
			if f.arity >= 0 && len(params) != f.arity {
				return nil, fmt.Errorf("%s takes %d, got %d: %w", name, f.arity, len(params), ErrArity)
			}
			return f.fn(params), nil
		},
		"number": func(n *ezpeg.Node, args []any) (any, error) {
			return strconv.ParseFloat(n.Text(), 64)
		},
		"variable": func(n *ezpeg.Node, args []any) (any, error) {
			v, ok := e[n.Text()]
			if !ok {
				return nil, fmt.Errorf("variable %q: %w", n.Text(), ErrUndefined)
			}
			return v, nil
		},
	}
}
