// Package node implements the typed expression trees rules are made of.
//
// A Node is one of four kinds:
//
//   - terminal: reads a value from the evaluation context
//   - function: applies a pure function to the values of its children
//   - branch:   evaluates a boolean condition, then exactly one of two outcomes
//   - category: maps a numeric child through a threshold table to a label
//
// Nodes are created through a Registry, which checks arity and input types once
// at construction. Evaluation never re-checks types and never mutates a node,
// so a built tree can be evaluated concurrently against independent contexts.
package node

import (
	"fmt"

	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/threshold"
)

type Kind int

const (
	KindTerminal Kind = iota
	KindFunction
	KindBranch
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindFunction:
		return "function"
	case KindBranch:
		return "branch"
	case KindCategory:
		return "category"
	default:
		return "unknown"
	}
}

func (k Kind) TypeName() string {
	return k.String()
}

// Reader produces a terminal's value from the context.
type Reader func(ctx core.Context) (core.Value, error)

// Func is the pure function applied by a function node to its evaluated children.
type Func func(args []core.Value) (core.Value, error)

// Node is one element of a rule's expression tree.
type Node struct {
	kind     Kind
	name     string
	output   core.SemanticType
	children []*Node
	params   Params

	// adopted is set once the node became the child of another node.
	adopted bool

	// terminal
	path string
	read Reader

	// function
	fn    Func
	arity int

	// category
	table *threshold.Table
}

var _ core.Nameable = (*Node)(nil)

// NewTerminal creates a leaf reading from the context. path is informational
// (traces, formatting); read does the actual lookup.
func NewTerminal(output core.SemanticType, path string, read Reader) *Node {
	return &Node{
		kind:   KindTerminal,
		output: output,
		path:   path,
		read:   read,
	}
}

// NewFunction creates a node applying fn to the values of children.
// The child count is fixed from here on.
func NewFunction(output core.SemanticType, children []*Node, fn Func) *Node {
	return &Node{
		kind:     KindFunction,
		output:   output,
		children: children,
		fn:       fn,
		arity:    len(children),
	}
}

// NewBranch creates a node returning then or otherwise, depending on cond.
// Its output type is the output type of then.
func NewBranch(cond, then, otherwise *Node) *Node {
	return &Node{
		kind:     KindBranch,
		output:   then.output,
		children: []*Node{cond, then, otherwise},
	}
}

// NewCategory creates a node mapping the numeric value of child through table.
func NewCategory(table *threshold.Table, child *Node) *Node {
	return &Node{
		kind:     KindCategory,
		output:   table.Type,
		children: []*Node{child},
		table:    table,
	}
}

func (n *Node) Kind() Kind {
	return n.kind
}

// Name is the registered name the node was created from.
func (n *Node) Name() string {
	return n.name
}

func (n *Node) TypeName() string {
	return n.name
}

// Output is the semantic type of the values this node produces.
func (n *Node) Output() core.SemanticType {
	return n.output
}

// Path is the variable path of a terminal node.
func (n *Node) Path() string {
	return n.path
}

// Table is the threshold table of a category node.
func (n *Node) Table() *threshold.Table {
	return n.table
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Params returns a copy of the parameters the node was created with.
func (n *Node) Params() Params {
	return n.params.clone()
}

// Evaluate computes the value of the tree rooted at n.
func (n *Node) Evaluate(ctx core.Context) (core.Value, error) {
	return n.eval(ctx, nil, 0)
}

// Explain evaluates like Evaluate and additionally records every visited node.
func (n *Node) Explain(ctx core.Context) (core.Value, []core.TraceStep, error) {
	rec := &recorder{}
	v, err := n.eval(ctx, rec, 0)
	return v, rec.steps, err
}

func (n *Node) eval(ctx core.Context, rec *recorder, depth int) (core.Value, error) {
	step := rec.enter(n, depth)
	v, err := n.evalKind(ctx, rec, depth)
	rec.leave(step, v, err)
	return v, err
}

func (n *Node) evalKind(ctx core.Context, rec *recorder, depth int) (core.Value, error) {
	switch n.kind {
	case KindTerminal:
		return n.read(ctx)

	case KindFunction:
		if len(n.children) != n.arity {
			return core.Value{}, &core.OperatorArityError{Name: n.name, Want: n.arity, Got: len(n.children)}
		}
		args := make([]core.Value, len(n.children))
		for i, child := range n.children {
			v, err := child.eval(ctx, rec, depth+1)
			if err != nil {
				return core.Value{}, err
			}
			args[i] = v
		}
		return n.fn(args)

	case KindBranch:
		cond, err := n.children[0].eval(ctx, rec, depth+1)
		if err != nil {
			return core.Value{}, err
		}
		taken, skipped := n.children[1], n.children[2]
		if !cond.Bool {
			taken, skipped = skipped, taken
		}
		rec.skip(skipped, depth+1)
		return taken.eval(ctx, rec, depth+1)

	case KindCategory:
		v, err := n.children[0].eval(ctx, rec, depth+1)
		if err != nil {
			return core.Value{}, err
		}
		label, err := n.table.Lookup(v.Number)
		if err != nil {
			return core.Value{}, err
		}
		return core.CategoryValue(n.table.Type, label, v.Number), nil
	}
	return core.Value{}, fmt.Errorf("node '%s' has unknown kind %d", n.name, n.kind)
}

// recorder collects trace steps. A nil recorder records nothing.
type recorder struct {
	steps []core.TraceStep
}

func (r *recorder) enter(n *Node, depth int) int {
	if r == nil {
		return -1
	}
	r.steps = append(r.steps, core.TraceStep{
		Depth:  depth,
		Node:   n.name,
		Kind:   n.kind.String(),
		Detail: n.detail(),
	})
	return len(r.steps) - 1
}

func (r *recorder) leave(idx int, v core.Value, err error) {
	if r == nil || idx < 0 {
		return
	}
	if err != nil {
		r.steps[idx].Error = err.Error()
		return
	}
	r.steps[idx].Value = &v
}

func (r *recorder) skip(n *Node, depth int) {
	if r == nil {
		return
	}
	r.steps = append(r.steps, core.TraceStep{
		Depth:   depth,
		Node:    n.name,
		Kind:    n.kind.String(),
		Detail:  n.detail(),
		Skipped: true,
	})
}

func (n *Node) detail() string {
	switch {
	case n.path != "":
		return n.path
	case len(n.children) == 0 && len(n.params) > 0:
		return n.params.String()
	case n.kind == KindCategory:
		return string(n.table.Type)
	}
	return ""
}
