// Package rule binds an expression tree to the semantic category it must produce.
package rule

import (
	"fmt"
	"strings"

	"github.com/darmiel/verdict/internal/catalog"
	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/node"
)

// Meta is the descriptive part of a rule.
type Meta struct {
	// ID is the stable identifier, prefixed by the family (e.g. "risk.ensemble").
	ID string

	// Family groups rules producing the same kind of verdict.
	Family string

	Description string

	// Target is the semantic type the root node must produce.
	Target core.SemanticType
}

// Rule is a named, typed tree. It is immutable and holds no state between
// evaluations, so one Rule can be evaluated concurrently against independent contexts.
type Rule struct {
	meta Meta
	root *node.Node
}

// FamilyTarget returns the semantic type rules of the given family produce.
func FamilyTarget(family string) (core.SemanticType, bool) {
	switch family {
	case catalog.FamilyDecision:
		return core.Decision, true
	case catalog.FamilyRisk:
		return core.RiskLevel, true
	case catalog.FamilyOpportunity:
		return core.OpportunityRating, true
	}
	return "", false
}

// CheckMeta validates id, family and target of a rule without building it.
func CheckMeta(meta Meta) error {
	if meta.ID == "" {
		return fmt.Errorf("%w: rule without id", core.ErrBuild)
	}
	target, ok := FamilyTarget(meta.Family)
	if !ok {
		return fmt.Errorf("%w: rule '%s' has unknown family '%s'", core.ErrBuild, meta.ID, meta.Family)
	}
	if !strings.HasPrefix(meta.ID, meta.Family+".") {
		return fmt.Errorf("%w: rule id '%s' must start with '%s.'", core.ErrBuild, meta.ID, meta.Family)
	}
	if meta.Target != target {
		return fmt.Errorf("%w: rule '%s' of family '%s' must target %s, not %s",
			core.ErrBuild, meta.ID, meta.Family, target, meta.Target)
	}
	return nil
}

// New creates a rule. The root must already produce the target type.
func New(meta Meta, root *node.Node) (*Rule, error) {
	if err := CheckMeta(meta); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("%w: rule '%s' has no root node", core.ErrBuild, meta.ID)
	}
	if root.Output() != meta.Target {
		return nil, &core.TargetCategoryError{RuleID: meta.ID, Target: meta.Target, Actual: root.Output()}
	}
	return &Rule{meta: meta, root: root}, nil
}

func (r *Rule) ID() string {
	return r.meta.ID
}

func (r *Rule) Meta() Meta {
	return r.meta
}

func (r *Rule) Root() *node.Node {
	return r.root
}

// Evaluate evaluates the tree against ctx.
//
// A root value of another type than the target means the registry handed out
// a mistyped node; that is a programming error and panics.
func (r *Rule) Evaluate(ctx core.Context) (core.Value, error) {
	v, err := r.root.Evaluate(ctx)
	if err != nil {
		return core.Value{}, err
	}
	r.mustMatchTarget(v)
	return v, nil
}

// Explain evaluates like Evaluate and returns the full node trace.
func (r *Rule) Explain(ctx core.Context) core.RuleTrace {
	v, steps, err := r.root.Explain(ctx)
	trace := core.RuleTrace{
		RuleVerdict: r.verdict(v, err),
		Steps:       steps,
	}
	return trace
}

// Verdict evaluates the rule and captures the outcome, including failures.
func (r *Rule) Verdict(ctx core.Context) core.RuleVerdict {
	v, err := r.Evaluate(ctx)
	return r.verdict(v, err)
}

func (r *Rule) verdict(v core.Value, err error) core.RuleVerdict {
	res := core.RuleVerdict{
		RuleID:      r.meta.ID,
		Family:      r.meta.Family,
		Description: r.meta.Description,
		Target:      r.meta.Target,
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	r.mustMatchTarget(v)
	res.Value = &v
	return res
}

func (r *Rule) mustMatchTarget(v core.Value) {
	if v.Type != r.meta.Target {
		panic(fmt.Sprintf("rule '%s': root produced %s, expected %s", r.meta.ID, v.Type, r.meta.Target))
	}
}
