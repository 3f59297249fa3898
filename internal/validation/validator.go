// Package validation checks declarative rule definitions before they are built.
package validation

import (
	"fmt"

	"github.com/darmiel/verdict/internal/node"
	"github.com/darmiel/verdict/internal/rule"
)

// ValidateRuleDefs checks ids, families, targets and node names of defs.
// reserved contains rule ids that are already taken, e.g. by the built-in rules.
// Type and parameter errors are only detected when the rules are built.
func ValidateRuleDefs(defs []rule.Def, reg *node.Registry, reserved map[string]struct{}) ([]rule.Def, error) {
	seenIDs := make(map[string]struct{})
	var validDefs []rule.Def

	for i, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("rule #%d missing id", i)
		}
		if _, exists := seenIDs[def.ID]; exists {
			return nil, fmt.Errorf("rule id '%s' is not unique", def.ID)
		}
		if _, taken := reserved[def.ID]; taken {
			return nil, fmt.Errorf("rule id '%s' is reserved by a built-in rule", def.ID)
		}
		seenIDs[def.ID] = struct{}{}

		meta, err := def.Meta()
		if err != nil {
			return nil, err
		}
		if err := rule.CheckMeta(meta); err != nil {
			return nil, err
		}

		if def.Root.Node == "" {
			return nil, fmt.Errorf("rule '%s' missing root", def.ID)
		}
		if err := checkNodeNames(reg, def.Root, def.Root.Node); err != nil {
			return nil, fmt.Errorf("rule '%s': %w", def.ID, err)
		}

		validDefs = append(validDefs, def)
	}

	return validDefs, nil
}

func checkNodeNames(reg *node.Registry, def node.Def, at string) error {
	if def.Node == "" {
		return fmt.Errorf("%s: missing node name", at)
	}
	if _, ok := reg.Lookup(def.Node); !ok {
		return fmt.Errorf("%s: unknown node '%s'", at, def.Node)
	}
	for i, child := range def.Children {
		if err := checkNodeNames(reg, child, fmt.Sprintf("%s/%d:%s", at, i, child.Node)); err != nil {
			return err
		}
	}
	return nil
}
