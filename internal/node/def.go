package node

import (
	"fmt"
	"strings"
)

// Def is the declarative, serializable form of a tree. Every node is named by
// its registered name, so a Def can only be built with a registry that knows
// all of them.
type Def struct {
	Node     string `yaml:"node" json:"node"`
	Params   Params `yaml:"params,omitempty" json:"params,omitempty"`
	Children []Def  `yaml:"children,omitempty" json:"children,omitempty"`
}

// Build creates the tree described by def, children first.
func Build(reg *Registry, def Def) (*Node, error) {
	return build(reg, def, def.Node)
}

func build(reg *Registry, def Def, at string) (*Node, error) {
	if def.Node == "" {
		return nil, fmt.Errorf("%s: missing node name", at)
	}
	children := make([]*Node, 0, len(def.Children))
	for i, childDef := range def.Children {
		child, err := build(reg, childDef, fmt.Sprintf("%s/%d:%s", at, i, childDef.Node))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	n, err := reg.Create(def.Node, children, def.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", at, err)
	}
	return n, nil
}

// Describe returns the Def n was built from.
func Describe(n *Node) Def {
	def := Def{
		Node:   n.name,
		Params: n.params.clone(),
	}
	for _, child := range n.children {
		def.Children = append(def.Children, Describe(child))
	}
	return def
}

// Format renders the tree in a compact call notation, e.g.
//
//	to_risk_level(weighted_sum(var(models.lgbm_score), var(models.rf_score); weights=[0.5 0.5]))
func Format(n *Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n *Node) {
	sb.WriteString(n.name)
	sb.WriteByte('(')
	if n.kind == KindTerminal && n.path != "" {
		sb.WriteString(n.path)
		sb.WriteByte(')')
		return
	}
	for i, child := range n.children {
		if i > 0 {
			sb.WriteString(", ")
		}
		format(sb, child)
	}
	if len(n.params) > 0 {
		if len(n.children) > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(n.params.String())
	}
	sb.WriteByte(')')
}
