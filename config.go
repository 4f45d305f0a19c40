package ezpeg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"
)

// DefaultRepeatLimit is how many times a repetition may match before the
// parse fails with ErrRepeatLimitExceeded.
const DefaultRepeatLimit = 1024

// Config tunes a Parser.
type Config struct {
	// RepeatLimit caps the matches of a single repetition. Zero means
	// DefaultRepeatLimit, a negative value means no cap; repetitions then
	// stop once an iteration consumes nothing.
	RepeatLimit int `yaml:"repeat_limit" toml:"repeat_limit"`
	// Trace logs every rule as it is left, at debug level.
	Trace bool `yaml:"trace" toml:"trace"`
	// LogLevel is a logrus level name. Empty means "info".
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// LogFormat is "text" or "json". Empty means "text".
	LogFormat string `yaml:"log_format" toml:"log_format"`
}

func DefaultConfig() Config {
	return Config{
		RepeatLimit: DefaultRepeatLimit,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func (c *Config) applyDefaults() {
	if c.RepeatLimit == 0 {
		c.RepeatLimit = DefaultRepeatLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

func (c Config) validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrUnsupportedConfig, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q: must be text or json", ErrUnsupportedConfig, c.LogFormat)
	}
	return nil
}

// LoadConfig reads a Config from a .yaml, .yml or .toml file. Unknown keys
// are an error in YAML files.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("failed to parse config file: unknown key %q", undecoded[0].String())
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedConfig, path)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewLogger returns a logger writing to w at the configured level and in
// the configured format.
func NewLogger(cfg Config, w io.Writer) (*logrus.Logger, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	lvl, _ := logrus.ParseLevel(cfg.LogLevel)
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	if cfg.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l, nil
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
