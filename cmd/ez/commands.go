package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/tef/ezpeg"
	"github.com/tef/ezpeg/infix"
	"github.com/tef/ezpeg/json"
	"github.com/tef/ezpeg/yaml"
)

type language struct {
	parser *ezpeg.Parser
	build  func(*ezpeg.Node) (any, error)
	about  string
}

var languages = map[string]language{
	"json": {json.JsonParser, json.Build, "RFC 8259 JSON, numbers as decimals"},
	"yaml": {yaml.YamlParser, yaml.Build, "block mappings and sequences of YAML"},
	"infix": {infix.InfixParser, func(n *ezpeg.Node) (any, error) {
		return infix.Env{}.Build(n)
	}, "arithmetic with variables and functions"},
}

var (
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
	cyan  = color.New(color.FgCyan)
)

// read returns the contents of name, or of standard input for "" and "-".
func (c *Context) read(name string) (string, error) {
	if name == "" || name == "-" {
		b, err := io.ReadAll(c.In)
		return string(b), err
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(b), nil
}

// parser returns the grammar's parser with logging from the command line.
// The repetition limit is only replaced when a configuration file was given.
func (c *Context) parser(name string) *ezpeg.Parser {
	p := languages[name].parser
	cfg := p.Config()
	if c.Loaded {
		cfg.RepeatLimit = c.Config.RepeatLimit
	}
	cfg.Trace = c.Config.Trace
	cfg.LogLevel = c.Config.LogLevel
	cfg.LogFormat = c.Config.LogFormat
	return p.WithConfig(cfg).WithLogger(c.Logger)
}

// report prints a parse error with the offending line.
func (c *Context) report(file string, err error) {
	if file == "" {
		file = "-"
	}
	var perr *ezpeg.Error
	if !errors.As(err, &perr) {
		red.Fprintf(c.Out, "%s: %v\n", file, err)
		return
	}
	red.Fprintf(c.Out, "%s:%v\n", file, perr)
	for _, line := range strings.Split(perr.Snippet(), "\n") {
		fmt.Fprintf(c.Out, "    %s\n", line)
	}
}

// ParseCmd represents the parse command
type ParseCmd struct {
	Grammar string `arg:"" help:"Grammar to parse with" enum:"json,yaml,infix"`
	File    string `arg:"" help:"Input file, standard input when absent or -" optional:""`
	Rule    string `help:"Rule to start from instead of the grammar's own" short:"r"`
	Partial bool   `help:"Allow input to be left over after the match"`
	Value   bool   `help:"Print the decoded value instead of the tree"`
}

func (p *ParseCmd) Run(ctx *Context) error {
	if p.Value && (p.Rule != "" || p.Partial) {
		return ErrValueRule
	}
	input, err := ctx.read(p.File)
	if err != nil {
		return err
	}

	parser := ctx.parser(p.Grammar)
	if p.Value {
		tree, err := parser.Parse(input)
		if err != nil {
			ctx.report(p.File, err)
			return ErrParseFailed
		}
		v, err := languages[p.Grammar].build(tree)
		if err != nil {
			ctx.report(p.File, err)
			return ErrParseFailed
		}
		fmt.Fprintf(ctx.Out, "%v\n", v)
		return nil
	}

	rule := p.Rule
	if rule == "" {
		rule = parser.Start()
	}

	var tree *ezpeg.Node
	if p.Partial {
		var end ezpeg.Position
		tree, end, err = parser.ParsePartialRule(rule, input)
		if err == nil {
			cyan.Fprintf(ctx.Out, "matched up to %v\n", end)
		}
	} else {
		tree, err = parser.ParseRule(rule, input)
	}
	if err != nil {
		ctx.report(p.File, err)
		return ErrParseFailed
	}
	fmt.Fprintln(ctx.Out, tree)
	return nil
}

// CheckCmd represents the check command
type CheckCmd struct {
	Grammar string   `arg:"" help:"Grammar to check with" enum:"json,yaml,infix"`
	Files   []string `arg:"" help:"Files to check, standard input when absent" optional:""`
	Quiet   bool     `help:"Only print failures" short:"q"`
}

func (c *CheckCmd) Run(ctx *Context) error {
	files := c.Files
	if len(files) == 0 {
		files = []string{"-"}
	}
	parser := ctx.parser(c.Grammar)
	failed := 0
	for _, file := range files {
		input, err := ctx.read(file)
		if err == nil {
			_, err = parser.Parse(input)
		}
		if err != nil {
			failed++
			ctx.report(file, err)
			continue
		}
		if !c.Quiet {
			green.Fprintf(ctx.Out, "%s: ok\n", file)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrCheckFailed, failed, len(files))
	}
	return nil
}

// GrammarsCmd represents the grammars command
type GrammarsCmd struct {
	Rules bool `help:"List every rule of each grammar"`
}

func (g *GrammarsCmd) Run(ctx *Context) error {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lang := languages[name]
		cyan.Fprintf(ctx.Out, "%-6s", name)
		fmt.Fprintf(ctx.Out, " %s (starts at %s)\n", lang.about, lang.parser.Start())
		if g.Rules {
			fmt.Fprintf(ctx.Out, "       %s\n", strings.Join(lang.parser.Rules(), " "))
		}
	}
	return nil
}
