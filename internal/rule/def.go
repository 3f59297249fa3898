package rule

import (
	"fmt"

	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/node"
)

// Def is the declarative form of a rule as found in ruleset files.
type Def struct {
	ID          string   `yaml:"id" json:"id"`
	Family      string   `yaml:"family" json:"family"`
	Target      string   `yaml:"target" json:"target"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Root        node.Def `yaml:"root" json:"root"`
}

// Meta converts the descriptive fields of def.
func (d Def) Meta() (Meta, error) {
	target, err := core.ParseSemanticType(d.Target)
	if err != nil {
		return Meta{}, fmt.Errorf("%w: rule '%s': %v", core.ErrBuild, d.ID, err)
	}
	return Meta{
		ID:          d.ID,
		Family:      d.Family,
		Description: d.Description,
		Target:      target,
	}, nil
}

// Build creates the rule described by def using reg.
func Build(reg *node.Registry, def Def) (*Rule, error) {
	meta, err := def.Meta()
	if err != nil {
		return nil, err
	}
	if err := CheckMeta(meta); err != nil {
		return nil, err
	}
	root, err := node.Build(reg, def.Root)
	if err != nil {
		return nil, fmt.Errorf("building rule '%s': %w", def.ID, err)
	}
	return New(meta, root)
}

// Describe returns the Def r can be rebuilt from.
func Describe(r *Rule) Def {
	return Def{
		ID:          r.meta.ID,
		Family:      r.meta.Family,
		Target:      string(r.meta.Target),
		Description: r.meta.Description,
		Root:        node.Describe(r.root),
	}
}
