package validation

import (
	"strings"
	"testing"

	"github.com/darmiel/verdict/internal/builtin"
	"github.com/darmiel/verdict/internal/catalog"
	"github.com/darmiel/verdict/internal/node"
	"github.com/darmiel/verdict/internal/rule"
)

func validDef(id string) rule.Def {
	return rule.Def{
		ID:     id,
		Family: catalog.FamilyDecision,
		Target: "decision",
		Root: node.Def{
			Node: catalog.NodeToDecision,
			Children: []node.Def{
				{Node: catalog.NodeVar, Params: node.Params{"path": catalog.PathRSI14}},
			},
		},
	}
}

func TestValidateRuleDefs(t *testing.T) {
	reg, err := builtin.NewRegistry(builtin.Options{})
	if err != nil {
		t.Fatalf("NewRegistry() unexpected error: %v", err)
	}
	reserved := map[string]struct{}{catalog.RuleDecisionMomentum: {}}

	unknownNode := validDef("decision.unknown")
	unknownNode.Root.Children[0].Node = "variable"

	noRoot := validDef("decision.noroot")
	noRoot.Root = node.Def{}

	wrongFamily := validDef("decision.family")
	wrongFamily.Family = "alpha"

	wrongTarget := validDef("decision.target")
	wrongTarget.Target = "risk_level"

	tests := []struct {
		name    string
		defs    []rule.Def
		wantErr string
	}{
		{name: "Valid", defs: []rule.Def{validDef("decision.a"), validDef("decision.b")}},
		{name: "Missing id", defs: []rule.Def{validDef("")}, wantErr: "missing id"},
		{name: "Duplicate id", defs: []rule.Def{validDef("decision.a"), validDef("decision.a")}, wantErr: "not unique"},
		{name: "Reserved id", defs: []rule.Def{validDef(catalog.RuleDecisionMomentum)}, wantErr: "reserved"},
		{name: "Unknown node", defs: []rule.Def{unknownNode}, wantErr: "unknown node 'variable'"},
		{name: "Missing root", defs: []rule.Def{noRoot}, wantErr: "missing root"},
		{name: "Unknown family", defs: []rule.Def{wrongFamily}, wantErr: "unknown family"},
		{name: "Target of another family", defs: []rule.Def{wrongTarget}, wantErr: "must target decision"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRuleDefs(tt.defs, reg, reserved)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ValidateRuleDefs() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateRuleDefs() unexpected error: %v", err)
			}
			if len(got) != len(tt.defs) {
				t.Errorf("ValidateRuleDefs() returned %d defs, want %d", len(got), len(tt.defs))
			}
		})
	}
}

func TestValidateRuleDefs_LocatesUnknownNode(t *testing.T) {
	reg, err := builtin.NewRegistry(builtin.Options{})
	if err != nil {
		t.Fatalf("NewRegistry() unexpected error: %v", err)
	}
	def := validDef("decision.deep")
	def.Root.Children[0] = node.Def{
		Node: catalog.NodeAdd,
		Children: []node.Def{
			{Node: catalog.NodeConst, Params: node.Params{"value": 1}},
			{Node: "nope"},
		},
	}

	_, err = ValidateRuleDefs([]rule.Def{def}, reg, nil)
	if err == nil || !strings.Contains(err.Error(), "to_decision/0:add/1:nope") {
		t.Errorf("ValidateRuleDefs() error = %v, want location of the unknown node", err)
	}
}
