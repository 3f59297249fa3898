package node

import (
	"errors"

	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/threshold"
)

var errBoom = errors.New("boom: this node must not be evaluated")

// testRegistry returns an unfrozen registry with a handful of simple specs.
// "boom" counts its evaluations in *boomCount and always fails.
func testRegistry(boomCount *int) *Registry {
	reg := NewRegistry()
	specs := []Spec{
		{
			Name:   "var",
			Output: core.Numeric,
			Arity:  Fixed(0),
			Construct: func(_ []*Node, params Params) (*Node, error) {
				path, _ := params["path"].(string)
				if path == "" {
					return nil, &core.ParamError{Name: "var", Reason: "missing 'path'"}
				}
				return NewTerminal(core.Numeric, path, func(ctx core.Context) (core.Value, error) {
					f, err := ctx.Number(path)
					if err != nil {
						return core.Value{}, err
					}
					return core.NumberValue(f), nil
				}), nil
			},
		},
		{
			Name:   "flag",
			Output: core.Boolean,
			Arity:  Fixed(0),
			Construct: func(_ []*Node, params Params) (*Node, error) {
				b, _ := params["value"].(bool)
				return NewFunction(core.Boolean, nil, func([]core.Value) (core.Value, error) {
					return core.BoolValue(b), nil
				}), nil
			},
		},
		{
			Name:   "num",
			Output: core.Numeric,
			Arity:  Fixed(0),
			Construct: func(_ []*Node, params Params) (*Node, error) {
				f, _ := core.ToFloat(params["value"])
				return NewFunction(core.Numeric, nil, func([]core.Value) (core.Value, error) {
					return core.NumberValue(f), nil
				}), nil
			},
		},
		{
			Name:   "boom",
			Output: core.Numeric,
			Arity:  Fixed(0),
			Construct: func([]*Node, Params) (*Node, error) {
				return NewTerminal(core.Numeric, "", func(core.Context) (core.Value, error) {
					*boomCount++
					return core.Value{}, errBoom
				}), nil
			},
		},
		{
			Name:   "sum",
			Output: core.Numeric,
			Inputs: []core.SemanticType{core.Numeric},
			Arity:  AtLeast(1),
			Construct: func(children []*Node, _ Params) (*Node, error) {
				return NewFunction(core.Numeric, children, func(args []core.Value) (core.Value, error) {
					var total float64
					for _, a := range args {
						total += a.Number
					}
					return core.NumberValue(total), nil
				}), nil
			},
		},
		{
			Name:   "if",
			Output: core.Any,
			Inputs: []core.SemanticType{core.Boolean, core.Any, core.Any},
			Arity:  Fixed(3),
			Construct: func(children []*Node, _ Params) (*Node, error) {
				return NewBranch(children[0], children[1], children[2]), nil
			},
		},
		{
			Name:   "to_risk_level",
			Output: core.RiskLevel,
			Inputs: []core.SemanticType{core.Numeric},
			Arity:  Fixed(1),
			Construct: func(children []*Node, _ Params) (*Node, error) {
				return NewCategory(threshold.Risk(), children[0]), nil
			},
		},
	}
	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			panic(err)
		}
	}
	return reg
}

func mustCreate(reg *Registry, name string, params Params, children ...*Node) *Node {
	n, err := reg.Create(name, children, params)
	if err != nil {
		panic(err)
	}
	return n
}
