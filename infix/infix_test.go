package infix

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/tef/ezpeg"
)

func TestInfix(t *testing.T) {
	tree, err := InfixParser.Parse("1")
	assert.NoError(t, err)
	tree.Walk(func(n *ezpeg.Node) {
		t.Logf("node %s %q", n.Kind, n.Text())
	})

	tree, err = InfixParser.Parse("1 + 2*3")
	assert.NoError(t, err)
	assert.Equal(t,
		`(sum (product (power (number "1"))) (add_op "+") (product (power (number "2")) (mul_op "*") (power (number "3"))))`,
		tree.String())
}

func TestEval(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1", 1},
		{" 1 + 2 ", 3},
		{"1+2+3", 6},
		{"1 - 2 - 3", -4},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"7 % 4", 3},
		{"1.5e1 / 3", 5},
		{"-2^2", -4},
		{"2^-1", 0.5},
		{"2^3^2", 512},
		{"1 - -1", 2},
		{"sqrt(16) + abs(-2)", 6},
		{"max(1, 5, 3) - min(4, 2)", 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Eval(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssign(t *testing.T) {
	env := Env{}
	v, err := env.Eval("a = b = 2")
	assert.NoError(t, err)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, Env{"a": 2, "b": 2}, env)

	_, err = env.Eval("a * b + c_1 = 1")
	assert.Error(t, err)

	v, err = env.Eval("total = a * b + 1")
	assert.NoError(t, err)
	assert.Equal(t, 5.0, v)
	assert.Equal(t, 5.0, env["total"])
}

func TestEvalErrors(t *testing.T) {
	_, err := Eval("x + 1")
	assert.True(t, errors.Is(err, ErrUndefined))

	_, err = Eval("nope(1)")
	assert.True(t, errors.Is(err, ErrUndefined))

	_, err = Eval("sqrt(1, 2)")
	assert.True(t, errors.Is(err, ErrArity))

	_, err = Eval("1 / (2 - 2)")
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	_, err = Eval("1 + * 2")
	var perr *ezpeg.Error
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, 4, perr.Offset)

	_, err = Eval("")
	assert.Error(t, err)
}

func TestLongInput(t *testing.T) {
	got, err := Eval("1" + strings.Repeat(" + 1", 1999))
	assert.NoError(t, err)
	assert.Equal(t, 2000.0, got)

	tree, err := InfixParser.Parse("x * 2")
	assert.NoError(t, err)
	got, err = Env{"x": 4}.Build(tree)
	assert.NoError(t, err)
	assert.Equal(t, 8.0, got)
}
