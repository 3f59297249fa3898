package builtin

import (
	"errors"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/darmiel/verdict/internal/aggregate"
	"github.com/darmiel/verdict/internal/catalog"
	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/node"
	"github.com/darmiel/verdict/internal/threshold"
)

var (
	num  = core.Numeric
	boo  = core.Boolean
	anyT = core.Any
)

func terminalSpecs(opts Options) []node.Spec {
	return []node.Spec{
		{
			Name:        catalog.NodeVar,
			Description: "numeric variable read from the context",
			Output:      num,
			Arity:       node.Fixed(0),
			Construct:   constructVar(num),
		},
		{
			Name:        catalog.NodeFlag,
			Description: "boolean variable read from the context",
			Output:      boo,
			Arity:       node.Fixed(0),
			Construct:   constructVar(boo),
		},
		{
			Name:        catalog.NodeConst,
			Description: "numeric constant",
			Output:      num,
			Arity:       node.Fixed(0),
			Construct:   constructConst,
		},
		{
			Name:        catalog.NodeBool,
			Description: "boolean constant",
			Output:      boo,
			Arity:       node.Fixed(0),
			Construct:   constructBool,
		},
		{
			Name:        catalog.NodeExpr,
			Description: "numeric expression over the context, compiled at build time",
			Output:      num,
			Arity:       node.Fixed(0),
			Construct:   constructExpr(num),
		},
		{
			Name:        catalog.NodeExprBool,
			Description: "boolean expression over the context, compiled at build time",
			Output:      boo,
			Arity:       node.Fixed(0),
			Construct:   constructExpr(boo),
		},
		{
			Name:        catalog.NodeBlend,
			Description: "weighted combination of estimator scores stored below a path",
			Output:      num,
			Arity:       node.Fixed(0),
			Construct:   constructBlend(opts.Estimators),
		},
	}
}

type varParams struct {
	Path string `mapstructure:"path"`
}

func constructVar(t core.SemanticType) node.Constructor {
	name := catalog.NodeVar
	if t == boo {
		name = catalog.NodeFlag
	}
	return func(_ []*node.Node, params node.Params) (*node.Node, error) {
		var p varParams
		if err := params.Decode(name, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			return nil, &core.ParamError{Name: name, Reason: "missing 'path'"}
		}
		path := p.Path
		if t == boo {
			return node.NewTerminal(t, path, func(ctx core.Context) (core.Value, error) {
				b, err := ctx.Bool(path)
				if err != nil {
					return core.Value{}, err
				}
				return core.BoolValue(b), nil
			}), nil
		}
		return node.NewTerminal(t, path, func(ctx core.Context) (core.Value, error) {
			f, err := ctx.Number(path)
			if err != nil {
				return core.Value{}, err
			}
			return core.NumberValue(f), nil
		}), nil
	}
}

type constParams struct {
	Value float64 `mapstructure:"value"`
}

func constructConst(_ []*node.Node, params node.Params) (*node.Node, error) {
	var p constParams
	if err := params.Decode(catalog.NodeConst, &p); err != nil {
		return nil, err
	}
	if _, ok := params["value"]; !ok {
		return nil, &core.ParamError{Name: catalog.NodeConst, Reason: "missing 'value'"}
	}
	v := core.NumberValue(p.Value)
	return node.NewFunction(num, nil, func([]core.Value) (core.Value, error) {
		return v, nil
	}), nil
}

type boolParams struct {
	Value bool `mapstructure:"value"`
}

func constructBool(_ []*node.Node, params node.Params) (*node.Node, error) {
	var p boolParams
	if err := params.Decode(catalog.NodeBool, &p); err != nil {
		return nil, err
	}
	if _, ok := params["value"]; !ok {
		return nil, &core.ParamError{Name: catalog.NodeBool, Reason: "missing 'value'"}
	}
	v := core.BoolValue(p.Value)
	return node.NewFunction(boo, nil, func([]core.Value) (core.Value, error) {
		return v, nil
	}), nil
}

type exprParams struct {
	Code string `mapstructure:"code"`
}

// constructExpr compiles the expression once; evaluation only runs the program
// against the context. Expressions cannot call anything outside the
// expression language builtins and have no side effects.
func constructExpr(t core.SemanticType) node.Constructor {
	name := catalog.NodeExpr
	if t == boo {
		name = catalog.NodeExprBool
	}
	return func(_ []*node.Node, params node.Params) (*node.Node, error) {
		var p exprParams
		if err := params.Decode(name, &p); err != nil {
			return nil, err
		}
		if p.Code == "" {
			return nil, &core.ParamError{Name: name, Reason: "missing 'code'"}
		}
		paths, err := exprPaths(p.Code)
		if err != nil {
			return nil, &core.ParamError{Name: name, Reason: fmt.Sprintf("parsing expression: %v", err)}
		}
		opt := expr.AsFloat64()
		if t == boo {
			opt = expr.AsBool()
		}
		program, err := expr.Compile(p.Code, opt)
		if err != nil {
			return nil, &core.ParamError{Name: name, Reason: fmt.Sprintf("compiling expression: %v", err)}
		}
		return node.NewTerminal(t, "", runExpr(t, p.Code, paths, program)), nil
	}
}

// runExpr resolves every path the expression reads before running it, so a
// missing variable is reported like it is for 'var'.
func runExpr(t core.SemanticType, code string, paths []string, program *vm.Program) node.Reader {
	return func(ctx core.Context) (core.Value, error) {
		for _, path := range paths {
			if _, err := ctx.Resolve(path); err != nil {
				return core.Value{}, err
			}
		}
		out, err := expr.Run(program, map[string]any(ctx))
		if err != nil {
			return core.Value{}, &core.ExprError{Code: code, Wrapped: err}
		}
		if t == boo {
			b, ok := out.(bool)
			if !ok {
				return core.Value{}, &core.ExprError{Code: code, Wrapped: fmt.Errorf("result %T is not a boolean", out)}
			}
			return core.BoolValue(b), nil
		}
		f, ok := core.ToFloat(out)
		if !ok {
			return core.Value{}, &core.ExprError{Code: code, Wrapped: fmt.Errorf("result %T is not a number", out)}
		}
		return core.NumberValue(f), nil
	}
}

type blendParams struct {
	Path       string             `mapstructure:"path"`
	Estimators map[string]float64 `mapstructure:"estimators"`
}

// constructBlend reads "<path>.<estimator>" for every configured estimator.
// Without an 'estimators' param the registry-wide default weights are used.
func constructBlend(defaults map[string]float64) node.Constructor {
	return func(_ []*node.Node, params node.Params) (*node.Node, error) {
		var p blendParams
		if err := params.Decode(catalog.NodeBlend, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			return nil, &core.ParamError{Name: catalog.NodeBlend, Reason: "missing 'path'"}
		}
		weights := p.Estimators
		if len(weights) == 0 {
			weights = defaults
		}
		agg, err := aggregate.FromWeights(weights)
		if err != nil {
			return nil, err
		}
		path := p.Path
		return node.NewTerminal(num, path, func(ctx core.Context) (core.Value, error) {
			scores := make(map[string]float64, len(weights))
			for _, est := range agg.Estimators() {
				score, err := ctx.Number(path + core.PathSeparator + est.Name)
				if err != nil {
					var notFound *core.NotFoundVarPathError
					if errors.As(err, &notFound) {
						return core.Value{}, &core.MissingEstimatorScoreError{Name: est.Name}
					}
					return core.Value{}, err
				}
				scores[est.Name] = score
			}
			combined, err := agg.Combine(scores)
			if err != nil {
				return core.Value{}, err
			}
			return core.NumberValue(combined), nil
		}), nil
	}
}

func arithmeticSpecs(tables threshold.Set) []node.Spec {
	return []node.Spec{
		{
			Name:        catalog.NodeAdd,
			Description: "sum of all children",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.AtLeast(2),
			Construct: numeric(func(args []float64) (float64, error) {
				var sum float64
				for _, a := range args {
					sum += a
				}
				return sum, nil
			}),
		},
		{
			Name:        catalog.NodeSub,
			Description: "first child minus second child",
			Output:      num,
			Inputs:      []core.SemanticType{num, num},
			Arity:       node.Fixed(2),
			Construct: numeric(func(args []float64) (float64, error) {
				return args[0] - args[1], nil
			}),
		},
		{
			Name:        catalog.NodeMul,
			Description: "product of all children",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.AtLeast(2),
			Construct: numeric(func(args []float64) (float64, error) {
				product := 1.0
				for _, a := range args {
					product *= a
				}
				return product, nil
			}),
		},
		{
			Name:        catalog.NodeDiv,
			Description: "first child divided by second child",
			Output:      num,
			Inputs:      []core.SemanticType{num, num},
			Arity:       node.Fixed(2),
			Construct: numeric(func(args []float64) (float64, error) {
				if args[1] == 0 {
					return 0, &core.DivisionByZeroError{Name: catalog.NodeDiv}
				}
				return args[0] / args[1], nil
			}),
		},
		{
			Name:        catalog.NodeNeg,
			Description: "negated child",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.Fixed(1),
			Construct: numeric(func(args []float64) (float64, error) {
				return -args[0], nil
			}),
		},
		{
			Name:        catalog.NodeAbs,
			Description: "absolute value of child",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.Fixed(1),
			Construct: numeric(func(args []float64) (float64, error) {
				return math.Abs(args[0]), nil
			}),
		},
		{
			Name:        catalog.NodeMin,
			Description: "smallest child",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.AtLeast(1),
			Construct: numeric(func(args []float64) (float64, error) {
				m := args[0]
				for _, a := range args[1:] {
					m = math.Min(m, a)
				}
				return m, nil
			}),
		},
		{
			Name:        catalog.NodeMax,
			Description: "largest child",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.AtLeast(1),
			Construct: numeric(func(args []float64) (float64, error) {
				m := args[0]
				for _, a := range args[1:] {
					m = math.Max(m, a)
				}
				return m, nil
			}),
		},
		{
			Name:        catalog.NodeAvg,
			Description: "arithmetic mean of all children",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.AtLeast(1),
			Construct: numeric(func(args []float64) (float64, error) {
				var sum float64
				for _, a := range args {
					sum += a
				}
				return sum / float64(len(args)), nil
			}),
		},
		{
			Name:        catalog.NodeClamp,
			Description: "child forced into [min, max] or into the domain of a threshold table",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.Fixed(1),
			Construct:   constructClamp(tables),
		},
		{
			Name:        catalog.NodeWeightedSum,
			Description: "sum of weight_i * child_i, weights must sum to 1",
			Output:      num,
			Inputs:      []core.SemanticType{num},
			Arity:       node.AtLeast(1),
			Construct:   constructWeightedSum,
		},
	}
}

// numeric adapts a float function to a constructor without params.
func numeric(fn func(args []float64) (float64, error)) node.Constructor {
	return func(children []*node.Node, _ node.Params) (*node.Node, error) {
		return node.NewFunction(num, children, func(args []core.Value) (core.Value, error) {
			floats := make([]float64, len(args))
			for i, a := range args {
				floats[i] = a.Number
			}
			f, err := fn(floats)
			if err != nil {
				return core.Value{}, err
			}
			return core.NumberValue(f), nil
		}), nil
	}
}

type clampParams struct {
	Min   *float64 `mapstructure:"min"`
	Max   *float64 `mapstructure:"max"`
	Table string   `mapstructure:"table"`
}

func constructClamp(tables threshold.Set) node.Constructor {
	return func(children []*node.Node, params node.Params) (*node.Node, error) {
		var p clampParams
		if err := params.Decode(catalog.NodeClamp, &p); err != nil {
			return nil, err
		}

		var lower, upper float64
		switch {
		case p.Table != "" && p.Min == nil && p.Max == nil:
			t, err := core.ParseSemanticType(p.Table)
			if err != nil {
				return nil, &core.ParamError{Name: catalog.NodeClamp, Reason: err.Error()}
			}
			tbl, err := tables.Get(t)
			if err != nil {
				return nil, &core.ParamError{Name: catalog.NodeClamp, Reason: err.Error()}
			}
			lower, upper = tbl.Min(), tbl.Max()
		case p.Table == "" && p.Min != nil && p.Max != nil:
			lower, upper = *p.Min, *p.Max
			if lower > upper {
				return nil, &core.ParamError{Name: catalog.NodeClamp, Reason: fmt.Sprintf("min %v is greater than max %v", lower, upper)}
			}
		default:
			return nil, &core.ParamError{Name: catalog.NodeClamp, Reason: "expected either 'table' or both 'min' and 'max'"}
		}

		return numeric(func(args []float64) (float64, error) {
			if math.IsNaN(args[0]) {
				return args[0], nil
			}
			return math.Min(math.Max(args[0], lower), upper), nil
		})(children, nil)
	}
}

type weightedSumParams struct {
	Weights []float64 `mapstructure:"weights"`
}

func constructWeightedSum(children []*node.Node, params node.Params) (*node.Node, error) {
	var p weightedSumParams
	if err := params.Decode(catalog.NodeWeightedSum, &p); err != nil {
		return nil, err
	}
	if len(p.Weights) != len(children) {
		return nil, &core.WeightConfigError{
			Reason: fmt.Sprintf("%d weights for %d children", len(p.Weights), len(children)),
		}
	}
	estimators := make([]aggregate.Estimator, len(p.Weights))
	for i, w := range p.Weights {
		estimators[i] = aggregate.Estimator{Name: fmt.Sprintf("#%d", i), Weight: w}
	}
	agg, err := aggregate.New(estimators)
	if err != nil {
		return nil, err
	}
	return node.NewFunction(num, children, func(args []core.Value) (core.Value, error) {
		scores := make(map[string]float64, len(args))
		for i, a := range args {
			scores[estimators[i].Name] = a.Number
		}
		combined, err := agg.Combine(scores)
		if err != nil {
			return core.Value{}, err
		}
		return core.NumberValue(combined), nil
	}), nil
}

func logicSpecs() []node.Spec {
	return []node.Spec{
		comparison(catalog.NodeGt, "first child greater than second", func(a, b float64) bool { return a > b }),
		comparison(catalog.NodeGte, "first child greater than or equal to second", func(a, b float64) bool { return a >= b }),
		comparison(catalog.NodeLt, "first child less than second", func(a, b float64) bool { return a < b }),
		comparison(catalog.NodeLte, "first child less than or equal to second", func(a, b float64) bool { return a <= b }),
		comparison(catalog.NodeEq, "both children equal", func(a, b float64) bool { return a == b }),
		{
			Name:        catalog.NodeAnd,
			Description: "true if all children are true",
			Output:      boo,
			Inputs:      []core.SemanticType{boo},
			Arity:       node.AtLeast(2),
			Construct: logical(func(args []bool) bool {
				for _, a := range args {
					if !a {
						return false
					}
				}
				return true
			}),
		},
		{
			Name:        catalog.NodeOr,
			Description: "true if any child is true",
			Output:      boo,
			Inputs:      []core.SemanticType{boo},
			Arity:       node.AtLeast(2),
			Construct: logical(func(args []bool) bool {
				for _, a := range args {
					if a {
						return true
					}
				}
				return false
			}),
		},
		{
			Name:        catalog.NodeNot,
			Description: "negated child",
			Output:      boo,
			Inputs:      []core.SemanticType{boo},
			Arity:       node.Fixed(1),
			Construct: logical(func(args []bool) bool {
				return !args[0]
			}),
		},
		{
			Name:        catalog.NodeIf,
			Description: "evaluates the condition, then only the taken outcome",
			Output:      anyT,
			Inputs:      []core.SemanticType{boo, anyT, anyT},
			Arity:       node.Fixed(3),
			Construct:   constructIf,
		},
	}
}

func comparison(name, description string, cmp func(a, b float64) bool) node.Spec {
	return node.Spec{
		Name:        name,
		Description: description,
		Output:      boo,
		Inputs:      []core.SemanticType{num, num},
		Arity:       node.Fixed(2),
		Construct: func(children []*node.Node, _ node.Params) (*node.Node, error) {
			return node.NewFunction(boo, children, func(args []core.Value) (core.Value, error) {
				return core.BoolValue(cmp(args[0].Number, args[1].Number)), nil
			}), nil
		},
	}
}

func logical(fn func(args []bool) bool) node.Constructor {
	return func(children []*node.Node, _ node.Params) (*node.Node, error) {
		return node.NewFunction(boo, children, func(args []core.Value) (core.Value, error) {
			bools := make([]bool, len(args))
			for i, a := range args {
				bools[i] = a.Bool
			}
			return core.BoolValue(fn(bools)), nil
		}), nil
	}
}

func constructIf(children []*node.Node, _ node.Params) (*node.Node, error) {
	then, otherwise := children[1], children[2]
	if then.Output() != otherwise.Output() {
		return nil, &core.TypeConstraintError{
			Name:     catalog.NodeIf,
			Index:    2,
			Declared: then.Output(),
			Actual:   otherwise.Output(),
		}
	}
	return node.NewBranch(children[0], then, otherwise), nil
}

func categorySpecs(tables threshold.Set) ([]node.Spec, error) {
	roots := []struct {
		name string
		typ  core.SemanticType
	}{
		{catalog.NodeToDecision, core.Decision},
		{catalog.NodeToRiskLevel, core.RiskLevel},
		{catalog.NodeToOpportunityRating, core.OpportunityRating},
	}

	specs := make([]node.Spec, 0, len(roots))
	for _, root := range roots {
		tbl, err := tables.Get(root.typ)
		if err != nil {
			return nil, err
		}
		specs = append(specs, node.Spec{
			Name:        root.name,
			Description: fmt.Sprintf("maps a numeric score to a %s label", root.typ),
			Output:      root.typ,
			Inputs:      []core.SemanticType{num},
			Arity:       node.Fixed(1),
			Construct: func(children []*node.Node, _ node.Params) (*node.Node, error) {
				return node.NewCategory(tbl, children[0]), nil
			},
		})
	}
	return specs, nil
}
