package builtin

import (
	"errors"
	"testing"

	"github.com/darmiel/verdict/internal/catalog"
	"github.com/darmiel/verdict/internal/core"
)

func TestRules_Sample(t *testing.T) {
	reg := newTestRegistry(t)
	rules, err := Rules(reg)
	if err != nil {
		t.Fatalf("Rules() unexpected error: %v", err)
	}
	if len(rules) != len(RuleDefs()) {
		t.Fatalf("Rules() returned %d rules, want %d", len(rules), len(RuleDefs()))
	}

	want := map[string]string{
		catalog.RuleDecisionMomentum:   "buy",  // 50 + 0.6*20 + 15 = 77
		catalog.RuleDecisionValuation:  "buy",  // 50 + 50*5/20 = 62.5
		catalog.RuleRiskEnsemble:       "high", // 0.65
		catalog.RuleRiskVolatility:     "low",  // 0.6*0.4 + 0.4*0.2 = 0.32
		catalog.RuleOpportunityGrowth:  "fair", // 200 * 0.15 = 30
		catalog.RuleOpportunityRebound: "good", // 40 + 30 = 70
	}

	ctx := SampleContext()
	for _, r := range rules {
		t.Run(r.ID(), func(t *testing.T) {
			got, err := r.Evaluate(ctx)
			if err != nil {
				t.Fatalf("Evaluate() unexpected error: %v", err)
			}
			if got.Type != r.Meta().Target {
				t.Errorf("Type = %s, want %s", got.Type, r.Meta().Target)
			}
			if got.Label != want[r.ID()] {
				t.Errorf("Label = %s (score %v), want %s", got.Label, got.Number, want[r.ID()])
			}
		})
	}
}

func TestRules_Clamped(t *testing.T) {
	reg := newTestRegistry(t)
	rules, err := Rules(reg)
	if err != nil {
		t.Fatalf("Rules() unexpected error: %v", err)
	}

	ctx := SampleContext()
	technical := ctx["technical"].(map[string]any)
	technical["rsi_14"] = -200.0 // far outside the decision domain before clamping
	technical["volatility_30d"] = 4.0

	for _, r := range rules {
		v := r.Verdict(ctx)
		if v.Error != "" {
			t.Errorf("%s: unexpected error: %s", r.ID(), v.Error)
		}
	}
}

func TestRules_UnprofitableSkipsGrowth(t *testing.T) {
	reg := newTestRegistry(t)
	rules, err := Rules(reg)
	if err != nil {
		t.Fatalf("Rules() unexpected error: %v", err)
	}

	ctx := SampleContext()
	fundamental := ctx["fundamental"].(map[string]any)
	fundamental["profitable"] = false
	delete(fundamental, "revenue_growth")

	for _, r := range rules {
		if r.ID() != catalog.RuleOpportunityGrowth {
			continue
		}
		got, err := r.Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate() unexpected error: %v", err)
		}
		if got.Label != "poor" {
			t.Errorf("Label = %s, want poor", got.Label)
		}
		return
	}
	t.Fatalf("rule %s not found", catalog.RuleOpportunityGrowth)
}

func TestRules_MissingEstimator(t *testing.T) {
	reg := newTestRegistry(t)
	rules, err := Rules(reg)
	if err != nil {
		t.Fatalf("Rules() unexpected error: %v", err)
	}

	ctx := SampleContext()
	delete(ctx[catalog.PathModels].(map[string]any), catalog.EstimatorMI)

	for _, r := range rules {
		_, err := r.Evaluate(ctx)
		if r.ID() != catalog.RuleRiskEnsemble {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", r.ID(), err)
			}
			continue
		}
		var missing *core.MissingEstimatorScoreError
		if !errors.As(err, &missing) {
			t.Errorf("%s: error = %v, want MissingEstimatorScoreError", r.ID(), err)
		}
	}
}

func TestRules_MissingSignal(t *testing.T) {
	reg := newTestRegistry(t)
	rules, err := Rules(reg)
	if err != nil {
		t.Fatalf("Rules() unexpected error: %v", err)
	}

	ctx := SampleContext()
	delete(ctx["technical"].(map[string]any), "rsi_14")

	readsRSI := map[string]bool{
		catalog.RuleDecisionMomentum:   true,
		catalog.RuleOpportunityRebound: true,
	}
	for _, r := range rules {
		_, err := r.Evaluate(ctx)
		if !readsRSI[r.ID()] {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", r.ID(), err)
			}
			continue
		}
		var notFound *core.NotFoundVarPathError
		if !errors.As(err, &notFound) || notFound.Path != catalog.PathRSI14 {
			t.Errorf("%s: error = %v, want NotFoundVarPathError for %s", r.ID(), err, catalog.PathRSI14)
		}
	}
}
