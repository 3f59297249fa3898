// Package aggregate combines the scores of several estimators into one weighted score.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/threshold"
)

// WeightTolerance is how far the sum of all weights may drift from 1.0.
const WeightTolerance = 1e-6

// Estimator is a named score source and its share of the combined score.
type Estimator struct {
	Name   string  `yaml:"name" json:"name" mapstructure:"name"`
	Weight float64 `yaml:"weight" json:"weight" mapstructure:"weight"`
}

// Aggregator computes sum(weight_i * score_i) over a fixed list of estimators.
type Aggregator struct {
	estimators []Estimator
}

// New validates the weights: every estimator named once, no negative weight,
// and all weights summing to 1.0 within WeightTolerance.
func New(estimators []Estimator) (*Aggregator, error) {
	if len(estimators) == 0 {
		return nil, &core.WeightConfigError{Reason: "no estimators configured"}
	}
	seen := make(map[string]struct{}, len(estimators))
	var sum float64
	for i, e := range estimators {
		if e.Name == "" {
			return nil, &core.WeightConfigError{Reason: fmt.Sprintf("estimator #%d has no name", i)}
		}
		if _, dup := seen[e.Name]; dup {
			return nil, &core.WeightConfigError{Reason: fmt.Sprintf("estimator '%s' is configured twice", e.Name)}
		}
		seen[e.Name] = struct{}{}
		if e.Weight < 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return nil, &core.WeightConfigError{Reason: fmt.Sprintf("estimator '%s' has invalid weight %v", e.Name, e.Weight)}
		}
		sum += e.Weight
	}
	if math.Abs(sum-1) > WeightTolerance {
		return nil, &core.WeightConfigError{Reason: fmt.Sprintf("weights sum to %v, expected 1.0", sum)}
	}
	return &Aggregator{
		estimators: append([]Estimator(nil), estimators...),
	}, nil
}

// FromWeights builds an aggregator from a name -> weight map. Estimators are ordered by name.
func FromWeights(weights map[string]float64) (*Aggregator, error) {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	estimators := make([]Estimator, 0, len(names))
	for _, name := range names {
		estimators = append(estimators, Estimator{Name: name, Weight: weights[name]})
	}
	return New(estimators)
}

// Estimators returns a copy of the configured estimators.
func (a *Aggregator) Estimators() []Estimator {
	return append([]Estimator(nil), a.estimators...)
}

// Weights returns the configured weights keyed by estimator name.
func (a *Aggregator) Weights() map[string]float64 {
	out := make(map[string]float64, len(a.estimators))
	for _, e := range a.estimators {
		out[e.Name] = e.Weight
	}
	return out
}

// Combine returns the weighted sum of the given scores.
// Scores of estimators that are not configured are ignored.
func (a *Aggregator) Combine(scores map[string]float64) (float64, error) {
	var total float64
	for _, e := range a.estimators {
		s, ok := scores[e.Name]
		if !ok {
			return 0, &core.MissingEstimatorScoreError{Name: e.Name}
		}
		total += e.Weight * s
	}
	return total, nil
}

// Bucket combines the scores and maps the result through table.
func (a *Aggregator) Bucket(table *threshold.Table, scores map[string]float64) (string, float64, error) {
	combined, err := a.Combine(scores)
	if err != nil {
		return "", 0, err
	}
	label, err := table.Lookup(combined)
	if err != nil {
		return "", combined, err
	}
	return label, combined, nil
}
