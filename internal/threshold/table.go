// Package threshold maps raw scores to categorical labels using ordered interval tables.
package threshold

import (
	"fmt"
	"math"
	"sort"

	"github.com/darmiel/verdict/internal/core"
)

// ErrInvalidTable is returned for tables that are not contiguous, ordered and labeled.
var ErrInvalidTable = fmt.Errorf("%w: invalid threshold table", core.ErrBuild)

// Interval is a half-open range [Lower, Upper) mapped to Label.
// The last interval of a table also includes its upper bound.
type Interval struct {
	Lower float64 `yaml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" json:"upper"`
	Label string  `yaml:"label" json:"label"`
}

// Table is an ordered, contiguous set of intervals for one categorical type.
type Table struct {
	Type      core.SemanticType
	Intervals []Interval
}

// New validates the intervals and returns a table for t.
func New(t core.SemanticType, intervals []Interval) (*Table, error) {
	tbl := &Table{
		Type:      t,
		Intervals: append([]Interval(nil), intervals...),
	}
	if err := tbl.Validate(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// MustNew is like New but panics on an invalid table. Only used for the built-in tables.
func MustNew(t core.SemanticType, intervals []Interval) *Table {
	tbl, err := New(t, intervals)
	if err != nil {
		panic(err)
	}
	return tbl
}

func (t *Table) Validate() error {
	if !t.Type.IsCategorical() {
		return fmt.Errorf("%w: type %s is not categorical", ErrInvalidTable, t.Type)
	}
	if len(t.Intervals) == 0 {
		return fmt.Errorf("%w: %s table has no intervals", ErrInvalidTable, t.Type)
	}
	seen := make(map[string]struct{}, len(t.Intervals))
	for i, iv := range t.Intervals {
		if iv.Label == "" {
			return fmt.Errorf("%w: %s interval #%d has no label", ErrInvalidTable, t.Type, i)
		}
		if _, dup := seen[iv.Label]; dup {
			return fmt.Errorf("%w: %s label '%s' is used twice", ErrInvalidTable, t.Type, iv.Label)
		}
		seen[iv.Label] = struct{}{}
		if !isFinite(iv.Lower) || !isFinite(iv.Upper) {
			return fmt.Errorf("%w: %s interval '%s' has a non-finite bound", ErrInvalidTable, t.Type, iv.Label)
		}
		if iv.Lower >= iv.Upper {
			return fmt.Errorf("%w: %s interval '%s' is empty [%v, %v)", ErrInvalidTable, t.Type, iv.Label, iv.Lower, iv.Upper)
		}
		if i > 0 && t.Intervals[i-1].Upper != iv.Lower {
			return fmt.Errorf("%w: %s intervals '%s' and '%s' are not contiguous",
				ErrInvalidTable, t.Type, t.Intervals[i-1].Label, iv.Label)
		}
	}
	return nil
}

// Min is the inclusive lower bound of the table's domain.
func (t *Table) Min() float64 {
	return t.Intervals[0].Lower
}

// Max is the inclusive upper bound of the table's domain.
func (t *Table) Max() float64 {
	return t.Intervals[len(t.Intervals)-1].Upper
}

// Contains reports whether v lies within the table's domain.
func (t *Table) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= t.Min() && v <= t.Max()
}

// Lookup returns the label of the interval containing v.
func (t *Table) Lookup(v float64) (string, error) {
	if !t.Contains(v) {
		return "", &core.ValueOutOfRangeError{Table: t.Type, Value: v, Lower: t.Min(), Upper: t.Max()}
	}
	idx := sort.Search(len(t.Intervals), func(i int) bool {
		return v < t.Intervals[i].Upper
	})
	if idx == len(t.Intervals) {
		// v == Max
		idx = len(t.Intervals) - 1
	}
	return t.Intervals[idx].Label, nil
}

// Clamp forces v into the table's domain. NaN is left untouched so Lookup still rejects it.
func (t *Table) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Min(math.Max(v, t.Min()), t.Max())
}

// Labels returns the labels in ascending order of their intervals.
func (t *Table) Labels() []string {
	out := make([]string, len(t.Intervals))
	for i, iv := range t.Intervals {
		out[i] = iv.Label
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
