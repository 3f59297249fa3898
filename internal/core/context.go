package core

import (
	"strings"
)

// PathSeparator separates the segments of a variable path, e.g. "technical.rsi_14".
const PathSeparator = "."

// Context is the per-call snapshot of input variables a tree reads during evaluation.
// Values are numbers, booleans or nested maps.
type Context map[string]any

// Resolve walks the nested maps of c along path and returns the value stored there.
// Every missing segment, and every segment that is not a map, is reported as NotFoundVarPathError.
func (c Context) Resolve(path string) (any, error) {
	if path == "" {
		return nil, &NotFoundVarPathError{Path: path}
	}
	var current any = map[string]any(c)
	for _, segment := range strings.Split(path, PathSeparator) {
		m, ok := asMap(current)
		if !ok || segment == "" {
			return nil, &NotFoundVarPathError{Path: path}
		}
		next, exists := m[segment]
		if !exists || next == nil {
			return nil, &NotFoundVarPathError{Path: path}
		}
		current = next
	}
	return current, nil
}

// Number resolves path and requires a numeric value.
func (c Context) Number(path string) (float64, error) {
	raw, err := c.Resolve(path)
	if err != nil {
		return 0, err
	}
	f, ok := ToFloat(raw)
	if !ok {
		return 0, &VarTypeError{Path: path, Want: Numeric, Got: raw}
	}
	return f, nil
}

// Bool resolves path and requires a boolean value.
func (c Context) Bool(path string) (bool, error) {
	raw, err := c.Resolve(path)
	if err != nil {
		return false, err
	}
	b, ok := raw.(bool)
	if !ok {
		return false, &VarTypeError{Path: path, Want: Boolean, Got: raw}
	}
	return b, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Context:
		return m, true
	}
	return nil, false
}

// ToFloat widens Go's numeric kinds to float64. Booleans and strings are not numbers.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
