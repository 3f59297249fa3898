package core

import (
	"fmt"
	"strconv"
)

// Value is the typed result of evaluating a node.
type Value struct {
	Type SemanticType `yaml:"type" json:"type"`

	// Number holds the payload of numeric values and the raw score a
	// categorical value was derived from.
	Number float64 `yaml:"number" json:"number"`

	Bool bool `yaml:"bool,omitempty" json:"bool,omitempty"`

	// Label is set for categorical values (decision, risk level, opportunity rating).
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

func NumberValue(n float64) Value {
	return Value{Type: Numeric, Number: n}
}

func BoolValue(b bool) Value {
	return Value{Type: Boolean, Bool: b}
}

// CategoryValue creates a categorical value of type t, keeping the score it was bucketed from.
func CategoryValue(t SemanticType, label string, score float64) Value {
	return Value{Type: t, Label: label, Number: score}
}

func (v Value) String() string {
	switch {
	case v.Type == Boolean:
		return strconv.FormatBool(v.Bool)
	case v.Type.IsCategorical():
		return fmt.Sprintf("%s (%s)", v.Label, strconv.FormatFloat(v.Number, 'f', -1, 64))
	default:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
}
