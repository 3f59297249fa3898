package node

import (
	"errors"
	"testing"

	"github.com/darmiel/verdict/internal/core"
)

func TestRegistry_RegisterDuplicate(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	first, _ := reg.Lookup("sum")
	err := reg.Register(Spec{
		Name:   "sum",
		Output: core.Boolean,
		Arity:  Fixed(0),
		Construct: func([]*Node, Params) (*Node, error) {
			return nil, errors.New("must not be called")
		},
	})

	var dup *core.DuplicateNodeNameError
	if !errors.As(err, &dup) {
		t.Fatalf("Register() error = %v, want DuplicateNodeNameError", err)
	}
	if dup.Name != "sum" {
		t.Errorf("DuplicateNodeNameError.Name = %s, want sum", dup.Name)
	}

	kept, _ := reg.Lookup("sum")
	if kept.Output != first.Output || kept.Arity != first.Arity {
		t.Errorf("first registration was replaced: got %+v", kept)
	}
	if _, err := reg.Create("sum", []*Node{mustCreate(reg, "num", Params{"value": 1})}, nil); err != nil {
		t.Errorf("Create() with first registration failed: %v", err)
	}
}

func TestRegistry_Frozen(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)
	reg.Freeze()

	err := reg.Register(Spec{
		Name:   "late",
		Output: core.Numeric,
		Arity:  Fixed(0),
		Construct: func([]*Node, Params) (*Node, error) {
			return NewFunction(core.Numeric, nil, nil), nil
		},
	})
	if !errors.Is(err, ErrRegistryFrozen) {
		t.Fatalf("Register() error = %v, want ErrRegistryFrozen", err)
	}
	if _, ok := reg.Lookup("late"); ok {
		t.Errorf("frozen registry accepted a new spec")
	}
}

func TestRegistry_RegisterInvalidSpec(t *testing.T) {
	construct := func([]*Node, Params) (*Node, error) { return nil, nil }

	tests := []struct {
		name string
		spec Spec
	}{
		{name: "Missing name", spec: Spec{Output: core.Numeric, Construct: construct}},
		{name: "Missing constructor", spec: Spec{Name: "x", Output: core.Numeric}},
		{name: "Unknown output", spec: Spec{Name: "x", Output: "money", Construct: construct}},
		{name: "Inputs do not match arity", spec: Spec{Name: "x", Output: core.Numeric, Arity: Fixed(2), Inputs: []core.SemanticType{core.Numeric}, Construct: construct}},
		{name: "Variadic without constraint", spec: Spec{Name: "x", Output: core.Numeric, Arity: AtLeast(1), Construct: construct}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.spec)
			if !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("Register() error = %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestRegistry_Create(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	tests := []struct {
		name     string
		node     string
		children func() []*Node
		wantErr  any
	}{
		{
			name: "Variadic sum",
			node: "sum",
			children: func() []*Node {
				return []*Node{mustCreate(reg, "num", Params{"value": 1}), mustCreate(reg, "num", Params{"value": 2})}
			},
		},
		{
			name:     "Unknown node",
			node:     "pow",
			children: func() []*Node { return nil },
			wantErr:  new(*core.UnknownNodeNameError),
		},
		{
			name:     "Too few children",
			node:     "sum",
			children: func() []*Node { return nil },
			wantErr:  new(*core.ArityMismatchError),
		},
		{
			name: "Too many children",
			node: "to_risk_level",
			children: func() []*Node {
				return []*Node{mustCreate(reg, "num", Params{"value": 1}), mustCreate(reg, "num", Params{"value": 2})}
			},
			wantErr: new(*core.ArityMismatchError),
		},
		{
			name: "Boolean where numeric required",
			node: "sum",
			children: func() []*Node {
				return []*Node{mustCreate(reg, "num", Params{"value": 1}), mustCreate(reg, "flag", Params{"value": true})}
			},
			wantErr: new(*core.TypeConstraintError),
		},
		{
			name: "Category where numeric required",
			node: "to_risk_level",
			children: func() []*Node {
				inner := mustCreate(reg, "to_risk_level", nil, mustCreate(reg, "num", Params{"value": 0.5}))
				return []*Node{inner}
			},
			wantErr: new(*core.TypeConstraintError),
		},
		{
			name:     "Constructor param error",
			node:     "var",
			children: func() []*Node { return nil },
			wantErr:  new(*core.ParamError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			children := tt.children()
			got, err := reg.Create(tt.node, children, nil)
			if tt.wantErr != nil {
				if got != nil {
					t.Errorf("Create() returned a node despite error")
				}
				if !errors.As(err, tt.wantErr) {
					t.Fatalf("Create() error = %v, want %T", err, tt.wantErr)
				}
				if !errors.Is(err, core.ErrBuild) {
					t.Errorf("Create() error should classify as build error")
				}
				for i, child := range children {
					if child.adopted {
						t.Errorf("child #%d was adopted by a failed Create()", i)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}
			spec, _ := reg.Lookup(tt.node)
			if got.Output() != spec.Output {
				t.Errorf("Output() = %s, want %s", got.Output(), spec.Output)
			}
		})
	}
}

func TestRegistry_CreateTypeConstraintDetails(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	_, err := reg.Create("if", []*Node{
		mustCreate(reg, "num", Params{"value": 1}),
		mustCreate(reg, "num", Params{"value": 2}),
		mustCreate(reg, "num", Params{"value": 3}),
	}, nil)

	var typeErr *core.TypeConstraintError
	if !errors.As(err, &typeErr) {
		t.Fatalf("Create() error = %v, want TypeConstraintError", err)
	}
	if typeErr.Index != 0 || typeErr.Declared != core.Boolean || typeErr.Actual != core.Numeric {
		t.Errorf("unexpected error details: %+v", typeErr)
	}
}

func TestRegistry_CreateRejectsSharedChild(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	shared := mustCreate(reg, "num", Params{"value": 1})
	mustCreate(reg, "sum", nil, shared)

	_, err := reg.Create("sum", []*Node{shared}, nil)
	if !errors.Is(err, ErrSharedNode) {
		t.Fatalf("Create() error = %v, want ErrSharedNode", err)
	}

	twice := mustCreate(reg, "num", Params{"value": 2})
	_, err = reg.Create("sum", []*Node{twice, twice}, nil)
	if !errors.Is(err, ErrSharedNode) {
		t.Fatalf("Create() with a repeated child error = %v, want ErrSharedNode", err)
	}
	// the rejected call must not adopt the child
	if _, err := reg.Create("sum", []*Node{twice}, nil); err != nil {
		t.Errorf("Create() after rejection unexpected error: %v", err)
	}
}

func TestRegistry_BranchResolvesOutput(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	branch := mustCreate(reg, "if", nil,
		mustCreate(reg, "flag", Params{"value": true}),
		mustCreate(reg, "num", Params{"value": 1}),
		mustCreate(reg, "num", Params{"value": 2}),
	)
	if branch.Output() != core.Numeric {
		t.Errorf("Output() = %s, want numeric", branch.Output())
	}
}

func TestRegistry_Specs(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	specs := reg.Specs()
	for i := 1; i < len(specs); i++ {
		if specs[i-1].Name >= specs[i].Name {
			t.Fatalf("Specs() not sorted: %s before %s", specs[i-1].Name, specs[i].Name)
		}
	}
}
