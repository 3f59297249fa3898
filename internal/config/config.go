package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/verdict/internal/aggregate"
	"github.com/darmiel/verdict/internal/audit"
	"github.com/darmiel/verdict/internal/builtin"
	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/node"
	"github.com/darmiel/verdict/internal/rule"
	"github.com/darmiel/verdict/internal/threshold"
	"github.com/darmiel/verdict/internal/validation"
)

// Config is a ruleset: threshold tables, estimator weights and rule definitions.
type Config struct {
	// Thresholds replace the built-in table of a categorical type, keyed by type name.
	Thresholds map[string][]threshold.Interval `yaml:"thresholds,omitempty"`

	// Estimators are the default weights of 'blend' nodes.
	Estimators map[string]float64 `yaml:"estimators,omitempty"`

	// Builtin registers the built-in rules alongside Rules. Defaults to true.
	Builtin *bool `yaml:"builtin,omitempty"`

	Rules []rule.Def `yaml:"rules,omitempty"`

	Audit audit.Config `yaml:"audit,omitempty"`

	// Workers bounds the parallelism of batch evaluations. Zero means one per CPU.
	Workers int `yaml:"workers,omitempty"`
}

// Default returns a ruleset containing only the built-in rules.
func Default() *Config {
	return &Config{}
}

// Load reads and parses the ruleset file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse parses and validates a ruleset.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// BuiltinEnabled reports whether the built-in rules are part of the ruleset.
func (c *Config) BuiltinEnabled() bool {
	return c.Builtin == nil || *c.Builtin
}

// Tables returns the built-in tables with the configured overrides applied.
func (c *Config) Tables() (threshold.Set, error) {
	overrides := make(map[core.SemanticType][]threshold.Interval, len(c.Thresholds))
	for name, intervals := range c.Thresholds {
		t, err := core.ParseSemanticType(name)
		if err != nil {
			return nil, fmt.Errorf("thresholds: %w", err)
		}
		if !t.IsCategorical() {
			return nil, fmt.Errorf("thresholds: %s is not a categorical type", t)
		}
		overrides[t] = intervals
	}
	return threshold.Defaults().Override(overrides)
}

// Options returns the builtin registry options described by the config.
func (c *Config) Options() (builtin.Options, error) {
	tables, err := c.Tables()
	if err != nil {
		return builtin.Options{}, err
	}
	return builtin.Options{
		Tables:     tables,
		Estimators: c.Estimators,
	}, nil
}

// Registry creates the frozen node registry for this ruleset.
func (c *Config) Registry() (*node.Registry, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return builtin.NewRegistry(opts)
}

func (c *Config) Validate() error {
	if len(c.Estimators) > 0 {
		if _, err := aggregate.FromWeights(c.Estimators); err != nil {
			return fmt.Errorf("estimators: %w", err)
		}
	}

	reg, err := c.Registry()
	if err != nil {
		return err
	}

	reserved := make(map[string]struct{})
	if c.BuiltinEnabled() {
		for _, def := range builtin.RuleDefs() {
			reserved[def.ID] = struct{}{}
		}
	}
	validDefs, err := validation.ValidateRuleDefs(c.Rules, reg, reserved)
	if err != nil {
		return fmt.Errorf("validating rules: %w", err)
	}
	c.Rules = validDefs

	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("validating audit: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// ThresholdsOf converts a table set back into the config representation.
func ThresholdsOf(tables threshold.Set) map[string][]threshold.Interval {
	out := make(map[string][]threshold.Interval, len(tables))
	for t, tbl := range tables {
		out[string(t)] = append([]threshold.Interval(nil), tbl.Intervals...)
	}
	return out
}
