// Package engine evaluates a frozen rule set against evaluation contexts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/verdict/internal/audit"
	"github.com/darmiel/verdict/internal/builtin"
	"github.com/darmiel/verdict/internal/config"
	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/node"
	"github.com/darmiel/verdict/internal/rule"
)

var ErrUnknownRule = errors.New("unknown rule")

// Engine holds a frozen registry and the rules built with it.
type Engine struct {
	registry *node.Registry
	rules    *rule.Set
	source   *config.Config
	auditor  core.Auditor
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuditor logs every produced report to auditor.
func WithAuditor(auditor core.Auditor) Option {
	return func(e *Engine) {
		e.auditor = auditor
	}
}

// WithSource records the config the engine was built from, used for snapshots.
func WithSource(cfg *config.Config) Option {
	return func(e *Engine) {
		e.source = cfg
	}
}

// New creates a new Engine with the given registry and rules.
func New(registry *node.Registry, rules *rule.Set, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		rules:    rules,
		auditor:  audit.NewNoopAuditor(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig builds the registry and all rules of cfg.
func FromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}

	set, err := rule.NewSet()
	if err != nil {
		return nil, err
	}
	if cfg.BuiltinEnabled() {
		rules, err := builtin.Rules(reg)
		if err != nil {
			return nil, err
		}
		for _, r := range rules {
			if err := set.Add(r); err != nil {
				return nil, err
			}
		}
	}
	for _, def := range cfg.Rules {
		r, err := rule.Build(reg, def)
		if err != nil {
			return nil, err
		}
		if err := set.Add(r); err != nil {
			return nil, err
		}
	}

	opts = append([]Option{WithSource(cfg)}, opts...)
	return New(reg, set, opts...), nil
}

func (e *Engine) Registry() *node.Registry {
	return e.registry
}

func (e *Engine) Rules() *rule.Set {
	return e.rules
}

// Workers is the batch parallelism configured by the source ruleset, zero if unset.
func (e *Engine) Workers() int {
	if e.source == nil {
		return 0
	}
	return e.source.Workers
}

// Filter restricts which rules are evaluated. An empty filter selects all rules.
type Filter struct {
	Families []string
	RuleIDs  []string
}

func (f Filter) matches(r *rule.Rule) bool {
	if len(f.Families) > 0 && !contains(f.Families, r.Meta().Family) {
		return false
	}
	if len(f.RuleIDs) > 0 && !contains(f.RuleIDs, r.ID()) {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Select returns the rules matching filter, sorted by id.
// Unknown rule ids are reported with ErrUnknownRule.
func (e *Engine) Select(filter Filter) ([]*rule.Rule, error) {
	for _, id := range filter.RuleIDs {
		if _, ok := e.rules.Get(id); !ok {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownRule, id)
		}
	}
	var out []*rule.Rule
	for _, r := range e.rules.All() {
		if filter.matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Evaluate evaluates every selected rule against evalCtx. A failing rule does not
// abort the others; its error is recorded in its verdict.
func (e *Engine) Evaluate(ctx context.Context, subject string, evalCtx core.Context, filter Filter) (*core.Report, error) {
	rules, err := e.Select(filter)
	if err != nil {
		return nil, err
	}

	report := &core.Report{
		ID:       xid.New().String(),
		Subject:  subject,
		Time:     time.Now(),
		Verdicts: make([]core.RuleVerdict, 0, len(rules)),
	}
	for _, r := range rules {
		verdict := r.Verdict(evalCtx)
		if verdict.Error != "" {
			log.Ctx(ctx).Debug().
				Str("report", report.ID).
				Str("rule", r.ID()).
				Msgf("rule evaluation failed: %s", verdict.Error)
		}
		report.Verdicts = append(report.Verdicts, verdict)
	}

	if err := e.auditor.Log(audit.EvaluationEntry(report)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("report", report.ID).Msg("failed to write audit entry")
	}
	return report, nil
}

// Explain evaluates a single rule and returns the trace of every visited node.
func (e *Engine) Explain(ruleID string, evalCtx core.Context) (core.RuleTrace, error) {
	r, ok := e.rules.Get(ruleID)
	if !ok {
		return core.RuleTrace{}, fmt.Errorf("%w: '%s'", ErrUnknownRule, ruleID)
	}
	return r.Explain(evalCtx), nil
}
