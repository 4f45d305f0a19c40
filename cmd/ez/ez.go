package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/tef/ezpeg"
)

var (
	ErrParseFailed = errors.New("parse failed")
	ErrCheckFailed = errors.New("check failed")
	ErrValueRule   = errors.New("--value cannot be combined with --rule or --partial")
)

// Context is shared by every command.
type Context struct {
	Config ezpeg.Config
	// Loaded is set when Config came from a file.
	Loaded bool
	Logger *logrus.Logger
	In     io.Reader
	Out    io.Writer
}

// CLI represents the command-line interface
type CLI struct {
	Config   string      `help:"Configuration file (.yaml, .yml or .toml)" type:"path" short:"c"`
	Trace    bool        `help:"Log every rule as it is matched"`
	LogLevel string      `help:"Log level, overriding the configuration file"`
	Parse    ParseCmd    `cmd:"" help:"Parse input and print the syntax tree"`
	Check    CheckCmd    `cmd:"" help:"Check that files parse"`
	Grammars GrammarsCmd `cmd:"" help:"List the built in grammars"`
}

func (c *CLI) context(in io.Reader, out, errOut io.Writer) (*Context, error) {
	cfg := ezpeg.DefaultConfig()
	loaded := c.Config != ""
	if loaded {
		fromFile, err := ezpeg.LoadConfig(c.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = fromFile
	}
	if c.Trace {
		cfg.Trace = true
		cfg.LogLevel = "debug"
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	logger, err := ezpeg.NewLogger(cfg, errOut)
	if err != nil {
		return nil, err
	}
	return &Context{Config: cfg, Loaded: loaded, Logger: logger, In: in, Out: out}, nil
}

func run(args []string, in io.Reader, out, errOut io.Writer, exit func(int)) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("ez"),
		kong.Description("Parse text with the built in PEG grammars."),
		kong.Writers(out, errOut),
		kong.Exit(exit),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	ctx, err := cli.context(in, out, errOut)
	if err != nil {
		return err
	}
	return kctx.Run(ctx)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
