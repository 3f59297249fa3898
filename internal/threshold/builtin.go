package threshold

import (
	"fmt"

	"github.com/darmiel/verdict/internal/core"
)

var (
	decisionIntervals = []Interval{
		{Lower: 0, Upper: 20, Label: "strong_sell"},
		{Lower: 20, Upper: 40, Label: "sell"},
		{Lower: 40, Upper: 60, Label: "hold"},
		{Lower: 60, Upper: 80, Label: "buy"},
		{Lower: 80, Upper: 100, Label: "strong_buy"},
	}
	riskIntervals = []Interval{
		{Lower: 0, Upper: 0.2, Label: "very_low"},
		{Lower: 0.2, Upper: 0.4, Label: "low"},
		{Lower: 0.4, Upper: 0.6, Label: "medium"},
		{Lower: 0.6, Upper: 0.8, Label: "high"},
		{Lower: 0.8, Upper: 1, Label: "very_high"},
	}
	opportunityIntervals = []Interval{
		{Lower: 0, Upper: 25, Label: "poor"},
		{Lower: 25, Upper: 50, Label: "fair"},
		{Lower: 50, Upper: 75, Label: "good"},
		{Lower: 75, Upper: 100, Label: "excellent"},
	}
)

// The built-in tables are created fresh on every call; changing one never
// affects another registry.

// Decision buckets a 0..100 conviction score.
func Decision() *Table {
	return MustNew(core.Decision, decisionIntervals)
}

// Risk buckets a 0..1 risk probability.
func Risk() *Table {
	return MustNew(core.RiskLevel, riskIntervals)
}

// Opportunity buckets a 0..100 opportunity rating.
func Opportunity() *Table {
	return MustNew(core.OpportunityRating, opportunityIntervals)
}

// Set holds one table per categorical type.
type Set map[core.SemanticType]*Table

// Defaults returns a fresh set with the built-in tables.
func Defaults() Set {
	return Set{
		core.Decision:          Decision(),
		core.RiskLevel:         Risk(),
		core.OpportunityRating: Opportunity(),
	}
}

// Override returns a copy of s with the given tables replaced.
func (s Set) Override(tables map[core.SemanticType][]Interval) (Set, error) {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	for t, intervals := range tables {
		tbl, err := New(t, intervals)
		if err != nil {
			return nil, fmt.Errorf("overriding %s thresholds: %w", t, err)
		}
		out[t] = tbl
	}
	return out, nil
}

// Get returns the table for t, or an error if none is configured.
func (s Set) Get(t core.SemanticType) (*Table, error) {
	tbl, ok := s[t]
	if !ok || tbl == nil {
		return nil, fmt.Errorf("%w: no threshold table for %s", ErrInvalidTable, t)
	}
	return tbl, nil
}
