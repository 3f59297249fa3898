package node

import (
	"errors"
	"fmt"
	"sort"

	"github.com/darmiel/verdict/internal/core"
)

var (
	// ErrRegistryFrozen is returned by Register once the registry has been frozen.
	ErrRegistryFrozen = errors.New("node registry is frozen")

	// ErrSharedNode is returned when a node would become the child of a second parent.
	ErrSharedNode = fmt.Errorf("%w: node already belongs to another tree", core.ErrBuild)
)

// Registry is the catalog of constructible node kinds, keyed by name.
//
// Specs are registered during start-up, after which the registry is frozen.
// A frozen registry is only read, so Create may be called from multiple
// goroutines without locking. Registration is not synchronized and must
// finish before any concurrent use.
type Registry struct {
	specs  map[string]Spec
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]Spec),
	}
}

// Register adds spec. Registering a name twice fails and keeps the first spec.
func (r *Registry) Register(spec Spec) error {
	if r.frozen {
		return fmt.Errorf("registering '%s': %w", spec.Name, ErrRegistryFrozen)
	}
	if err := spec.validate(); err != nil {
		return err
	}
	if _, exists := r.specs[spec.Name]; exists {
		return &core.DuplicateNodeNameError{Name: spec.Name}
	}
	r.specs[spec.Name] = spec
	return nil
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

func (r *Registry) Lookup(name string) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Specs returns all registered specs sorted by name.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Create builds a node of the named kind. The children are validated against
// the registered Spec's arity and input types before the constructor runs; on any error
// no node is returned and the children stay unowned.
func (r *Registry) Create(name string, children []*Node, params Params) (*Node, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, &core.UnknownNodeNameError{Name: name}
	}
	if !spec.Arity.Accepts(len(children)) {
		return nil, &core.ArityMismatchError{
			Name:     name,
			Want:     spec.Arity.Min,
			Variadic: spec.Arity.Variadic,
			Got:      len(children),
		}
	}
	seen := make(map[*Node]struct{}, len(children))
	for i, child := range children {
		if child == nil {
			return nil, &core.ParamError{Name: name, Reason: fmt.Sprintf("child #%d is nil", i)}
		}
		if _, dup := seen[child]; dup {
			return nil, fmt.Errorf("node '%s' child #%d ('%s') is passed twice: %w", name, i, child.name, ErrSharedNode)
		}
		seen[child] = struct{}{}
		if child.adopted {
			return nil, fmt.Errorf("node '%s' child #%d ('%s'): %w", name, i, child.name, ErrSharedNode)
		}
		declared := spec.InputAt(i)
		if !core.IsCompatible(declared, child.output) {
			return nil, &core.TypeConstraintError{
				Name:     name,
				Index:    i,
				Declared: declared,
				Actual:   child.output,
			}
		}
	}

	owned := append([]*Node(nil), children...)
	n, err := spec.Construct(owned, params)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: constructor of '%s' returned no node", ErrInvalidSpec, name)
	}
	if n.output == core.Any || !n.output.IsValid() {
		return nil, fmt.Errorf("%w: '%s' produced a node without concrete output type", ErrInvalidSpec, name)
	}
	if spec.Output != core.Any && n.output != spec.Output {
		return nil, fmt.Errorf("%w: '%s' declares %s but produced %s", ErrInvalidSpec, name, spec.Output, n.output)
	}

	n.name = name
	n.params = params.clone()
	for _, child := range owned {
		child.adopted = true
	}
	return n, nil
}
