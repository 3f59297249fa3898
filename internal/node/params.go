package node

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/verdict/internal/core"
)

// Params are the declarative parameters of a node, e.g. the path of a variable.
type Params map[string]any

func (p Params) clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String renders the params as sorted key=value pairs.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, p[k]))
	}
	return strings.Join(parts, " ")
}

// Decode decodes p into out (a pointer to a struct with mapstructure tags).
// Unknown keys are rejected so typos in rule definitions fail the build.
func (p Params) Decode(name string, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return &ParamsDecodeError{Name: name, Wrapped: err}
	}
	if err := decoder.Decode(map[string]any(p)); err != nil {
		return &ParamsDecodeError{Name: name, Wrapped: err}
	}
	return nil
}

// ParamsDecodeError is a ParamError caused by mapstructure.
type ParamsDecodeError struct {
	Name    string
	Wrapped error
}

func (e *ParamsDecodeError) Error() string {
	return fmt.Sprintf("node '%s': decoding params: %v", e.Name, e.Wrapped)
}

func (e *ParamsDecodeError) Unwrap() error {
	return e.Wrapped
}

func (e *ParamsDecodeError) Is(target error) bool {
	return target == core.ErrBuild
}
