package ezpeg

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Parser runs the rules of a grammar against input. A Parser holds no
// per-parse state and may be used from several goroutines at once.
type Parser struct {
	start  string
	rules  map[string]*Rule
	config Config
	logger logrus.FieldLogger
}

// NewParser makes a Parser from rules built without a Grammar. Every rule
// called by name must be among rules.
func NewParser(start string, rules ...*Rule) (*Parser, error) {
	table := make(map[string]*Rule, len(rules))
	for _, r := range rules {
		if _, ok := table[r.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrRedefinedRule, r.Name)
		}
		table[r.Name] = r
	}
	if _, ok := table[start]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoStartRule, start)
	}
	for _, r := range rules {
		var missing string
		walkCalls(r.Body, func(name string) {
			if _, ok := table[name]; !ok && missing == "" {
				missing = name
			}
		})
		if missing != "" {
			return nil, fmt.Errorf("%w: %q called from %q", ErrMissingRule, missing, r.Name)
		}
	}
	return &Parser{
		start:  start,
		rules:  table,
		config: DefaultConfig(),
		logger: discardLogger(),
	}, nil
}

// WithConfig returns a copy of p using cfg. Zero fields of cfg take their
// defaults.
func (p *Parser) WithConfig(cfg Config) *Parser {
	cfg.applyDefaults()
	q := *p
	q.config = cfg
	return &q
}

// WithLogger returns a copy of p logging to l.
func (p *Parser) WithLogger(l logrus.FieldLogger) *Parser {
	q := *p
	q.logger = l
	return &q
}

func (p *Parser) Config() Config {
	return p.config
}

func (p *Parser) Start() string {
	return p.start
}

// Rules returns the names of the parser's rules, sorted.
func (p *Parser) Rules() []string {
	names := make([]string, 0, len(p.rules))
	for name := range p.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse matches the starting rule against all of input.
func (p *Parser) Parse(input string) (*Node, error) {
	node, _, err := p.run(p.start, input, true)
	return node, err
}

// ParseRule matches the named rule against all of input.
func (p *Parser) ParseRule(name, input string) (*Node, error) {
	node, _, err := p.run(name, input, true)
	return node, err
}

// ParsePartial matches the starting rule against a prefix of input and
// returns where the match stopped.
func (p *Parser) ParsePartial(input string) (*Node, Position, error) {
	return p.run(p.start, input, false)
}

func (p *Parser) ParsePartialRule(name, input string) (*Node, Position, error) {
	return p.run(name, input, false)
}

// Accept reports whether the starting rule matches all of input.
func (p *Parser) Accept(input string) bool {
	_, _, err := p.run(p.start, input, true)
	return err == nil
}

func (p *Parser) run(name, input string, full bool) (*Node, Position, error) {
	start := Start(input)
	r, ok := p.rules[name]
	if !ok {
		return nil, start, fmt.Errorf("%w: %q", ErrMissingRule, name)
	}

	st := newState(p.rules, p.config, p.logger)
	next, node, ok := r.match(start, st, false)
	if ok && full {
		end := next
		if r.Kind != RuleAtomic && r.Kind != RuleCompoundAtomic {
			end = st.skipIgnored(next, false)
		}
		if end.AtEnd() {
			next = end
		} else {
			st.tracker.RecordFail(ErrUnmatchedBuiltin, "end of input", end)
			ok = false
		}
	}
	if !ok {
		return nil, start, st.tracker.Finish(input)
	}
	return node, next, nil
}
