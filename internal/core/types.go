package core

import "fmt"

// SemanticType is the category of value a node produces or consumes.
type SemanticType string

const (
	Numeric           SemanticType = "numeric"
	Boolean           SemanticType = "boolean"
	Decision          SemanticType = "decision"
	RiskLevel         SemanticType = "risk_level"
	OpportunityRating SemanticType = "opportunity_rating"
	// Any is only valid as a declared input or output constraint; values never carry it.
	Any SemanticType = "any"
)

var semanticTypes = []SemanticType{Numeric, Boolean, Decision, RiskLevel, OpportunityRating, Any}

// SemanticTypes returns all known semantic types.
func SemanticTypes() []SemanticType {
	out := make([]SemanticType, len(semanticTypes))
	copy(out, semanticTypes)
	return out
}

func (t SemanticType) IsValid() bool {
	for _, s := range semanticTypes {
		if s == t {
			return true
		}
	}
	return false
}

// IsCategorical reports whether values of t carry a label rather than a raw number.
func (t SemanticType) IsCategorical() bool {
	switch t {
	case Decision, RiskLevel, OpportunityRating:
		return true
	default:
		return false
	}
}

func (t SemanticType) String() string {
	return string(t)
}

// ParseSemanticType parses a type name as used in rule definitions.
func ParseSemanticType(s string) (SemanticType, error) {
	t := SemanticType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown semantic type '%s'", s)
	}
	return t, nil
}

// IsCompatible reports whether a value of type actual may be supplied where declared is required.
// There is no coercion between concrete types, e.g. a boolean never satisfies numeric.
func IsCompatible(declared, actual SemanticType) bool {
	return declared == Any || declared == actual
}
