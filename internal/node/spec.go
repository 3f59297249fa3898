package node

import (
	"fmt"

	"github.com/darmiel/verdict/internal/core"
)

// ErrInvalidSpec is returned when registering a malformed Spec or when a
// constructor returns a node that contradicts its Spec.
var ErrInvalidSpec = fmt.Errorf("%w: invalid node spec", core.ErrBuild)

// Constructor creates a node from already type-checked children.
type Constructor func(children []*Node, params Params) (*Node, error)

// Arity is the number of children a node accepts.
type Arity struct {
	Min      int
	Variadic bool
}

func Fixed(n int) Arity {
	return Arity{Min: n}
}

func AtLeast(n int) Arity {
	return Arity{Min: n, Variadic: true}
}

func (a Arity) Accepts(n int) bool {
	if a.Variadic {
		return n >= a.Min
	}
	return n == a.Min
}

func (a Arity) String() string {
	if a.Variadic {
		return fmt.Sprintf("%d+", a.Min)
	}
	return fmt.Sprintf("%d", a.Min)
}

// Spec describes a constructible node kind.
type Spec struct {
	Name        string
	Description string

	// Output is the type of the created node. Any means the constructor
	// derives it from its children or params.
	Output core.SemanticType

	// Inputs are the required child types, in order. For variadic specs the
	// last entry applies to every additional child.
	Inputs []core.SemanticType

	Arity     Arity
	Construct Constructor
}

func (s Spec) TypeName() string {
	return s.Name
}

// InputAt returns the type constraint of the i-th child.
func (s Spec) InputAt(i int) core.SemanticType {
	if i < len(s.Inputs) {
		return s.Inputs[i]
	}
	return s.Inputs[len(s.Inputs)-1]
}

func (s Spec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSpec)
	}
	if s.Construct == nil {
		return fmt.Errorf("%w: '%s' has no constructor", ErrInvalidSpec, s.Name)
	}
	if !s.Output.IsValid() {
		return fmt.Errorf("%w: '%s' has unknown output type '%s'", ErrInvalidSpec, s.Name, s.Output)
	}
	for i, in := range s.Inputs {
		if !in.IsValid() {
			return fmt.Errorf("%w: '%s' input #%d has unknown type '%s'", ErrInvalidSpec, s.Name, i, in)
		}
	}
	if s.Arity.Min < 0 {
		return fmt.Errorf("%w: '%s' has negative arity", ErrInvalidSpec, s.Name)
	}
	if s.Arity.Variadic {
		if len(s.Inputs) == 0 || len(s.Inputs) > s.Arity.Min+1 {
			return fmt.Errorf("%w: variadic '%s' needs between 1 and %d input constraints", ErrInvalidSpec, s.Name, s.Arity.Min+1)
		}
	} else if len(s.Inputs) != s.Arity.Min {
		return fmt.Errorf("%w: '%s' has %d input constraints for arity %d", ErrInvalidSpec, s.Name, len(s.Inputs), s.Arity.Min)
	}
	return nil
}
