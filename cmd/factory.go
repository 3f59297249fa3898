package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/darmiel/verdict/internal/audit"
	"github.com/darmiel/verdict/internal/builtin"
	"github.com/darmiel/verdict/internal/config"
	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/engine"
)

const RulesetKey = "ruleset"

type Factory struct {
	// RulesetPath is the ruleset config file. Empty means built-in rules only.
	RulesetPath string

	// ContextPath is a YAML or JSON file holding the evaluation context.
	ContextPath string
	UseSample   bool
}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) rulesetPath() string {
	if f.RulesetPath != "" { // prio 1: command-line flag
		return f.RulesetPath
	}
	return viper.GetString(RulesetKey) // prio 2: config/env
}

// LoadRuleset loads the configured ruleset, or the built-in defaults.
func (f *Factory) LoadRuleset() (*config.Config, error) {
	path := f.rulesetPath()
	if path == "" {
		log.Debug().Msg("no ruleset configured, using built-in rules")
		return config.Default(), nil
	}
	return config.Load(path)
}

// GetEngine builds the engine for the configured ruleset, auditing as the ruleset requests.
func (f *Factory) GetEngine() (*engine.Engine, core.Auditor, error) {
	cfg, err := f.LoadRuleset()
	if err != nil {
		return nil, nil, fmt.Errorf("loading ruleset: %w", err)
	}
	auditor, err := audit.New(cfg.Audit)
	if err != nil {
		return nil, nil, fmt.Errorf("creating auditor: %w", err)
	}
	eng, err := engine.FromConfig(cfg, engine.WithAuditor(auditor))
	if err != nil {
		_ = auditor.Close()
		return nil, nil, fmt.Errorf("building rules: %w", err)
	}
	return eng, auditor, nil
}

// LoadContext reads the evaluation context from --context, or returns the sample context.
func (f *Factory) LoadContext() (core.Context, error) {
	if f.UseSample {
		return builtin.SampleContext(), nil
	}
	if f.ContextPath == "" {
		return nil, fmt.Errorf("evaluation context not specified (use --context or --sample)")
	}
	var ctx core.Context
	if err := readYAML(f.ContextPath, &ctx); err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}
	if ctx == nil {
		ctx = core.Context{}
	}
	return ctx, nil
}

// readYAML decodes a YAML (or JSON) file.
func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func (f *Factory) bindRulesetFlag(flags *pflag.FlagSet) {
	flags.StringVarP(&f.RulesetPath, "ruleset", "f", "", "The ruleset config file to use (default: built-in rules)")
}

func (f *Factory) bindContextFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ContextPath, "context", "c", "", "YAML or JSON file containing the evaluation context")
	flags.BoolVar(&f.UseSample, "sample", false, "Use a built-in sample context instead of --context")
}
