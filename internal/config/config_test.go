package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/threshold"
)

const sampleRuleset = `
thresholds:
  risk_level:
    - {lower: 0, upper: 0.5, label: low}
    - {lower: 0.5, upper: 1, label: high}
estimators:
  lgbm_score: 0.5
  rf_score: 0.5
audit:
  enabled: true
  type: memory
rules:
  - id: decision.rsi_overbought
    family: decision
    target: decision
    description: sell when RSI is overbought
    root:
      node: to_decision
      children:
        - node: if
          children:
            - node: gt
              children:
                - {node: var, params: {path: technical.rsi_14}}
                - {node: const, params: {value: 70}}
            - {node: const, params: {value: 10}}
            - {node: const, params: {value: 50}}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleRuleset))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if !cfg.BuiltinEnabled() {
		t.Errorf("BuiltinEnabled() = false, want true by default")
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].ID != "decision.rsi_overbought" {
		t.Fatalf("Rules = %+v", cfg.Rules)
	}
	if diff := cmp.Diff(map[string]float64{"lgbm_score": 0.5, "rf_score": 0.5}, cfg.Estimators); diff != "" {
		t.Errorf("Estimators mismatch (-want +got):\n%s", diff)
	}

	tables, err := cfg.Tables()
	if err != nil {
		t.Fatalf("Tables() unexpected error: %v", err)
	}
	risk, err := tables.Get(core.RiskLevel)
	if err != nil {
		t.Fatalf("Get(risk_level) unexpected error: %v", err)
	}
	if label, _ := risk.Lookup(0.65); label != "high" {
		t.Errorf("overridden risk table maps 0.65 to %s, want high", label)
	}
	decision, _ := tables.Get(core.Decision)
	if diff := cmp.Diff(threshold.Decision().Intervals, decision.Intervals); diff != "" {
		t.Errorf("decision table should keep the built-in default (-want +got):\n%s", diff)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() unexpected error: %v", err)
	}
	if !reg.Frozen() {
		t.Errorf("Registry() should be frozen")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "Invalid yaml",
			yaml:    "rules: [",
			wantErr: "parsing config",
		},
		{
			name: "Gap in thresholds",
			yaml: `
thresholds:
  risk_level:
    - {lower: 0, upper: 0.4, label: low}
    - {lower: 0.5, upper: 1, label: high}
`,
			wantErr: "risk_level",
		},
		{
			name: "Thresholds for a non categorical type",
			yaml: `
thresholds:
  numeric:
    - {lower: 0, upper: 1, label: any}
`,
			wantErr: "not a categorical type",
		},
		{
			name: "Estimator weights do not sum to one",
			yaml: `
estimators:
  lgbm_score: 0.5
  rf_score: 0.4
`,
			wantErr: "estimators",
		},
		{
			name: "Unknown node",
			yaml: `
rules:
  - id: risk.custom
    family: risk
    target: risk_level
    root: {node: to_risk, children: [{node: const, params: {value: 1}}]}
`,
			wantErr: "unknown node 'to_risk'",
		},
		{
			name: "Id of a built-in rule",
			yaml: `
rules:
  - id: risk.ensemble
    family: risk
    target: risk_level
    root: {node: to_risk_level, children: [{node: const, params: {value: 1}}]}
`,
			wantErr: "reserved",
		},
		{
			name: "File audit without path",
			yaml: `
audit: {enabled: true, type: file}
`,
			wantErr: "requires a path",
		},
		{
			name:    "Negative workers",
			yaml:    "workers: -1",
			wantErr: "workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_BuiltinDisabledFreesIDs(t *testing.T) {
	cfg, err := Parse([]byte(`
builtin: false
rules:
  - id: risk.ensemble
    family: risk
    target: risk_level
    root: {node: to_risk_level, children: [{node: blend, params: {path: models}}]}
`))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if cfg.BuiltinEnabled() {
		t.Errorf("BuiltinEnabled() = true, want false")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruleset.yaml")
	if err := os.WriteFile(path, []byte(sampleRuleset), 0o600); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(cfg.Rules) != 1 {
		t.Errorf("Load() returned %d rules, want 1", len(cfg.Rules))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Load() expected error for a missing file")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sampleRuleset))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()) unexpected error: %v\n%s", err, data)
	}
	if len(again.Rules) != 1 || again.Rules[0].Root.Node != "to_decision" {
		t.Errorf("round trip lost rules: %+v", again.Rules)
	}
	if len(again.Thresholds["risk_level"]) != 2 {
		t.Errorf("round trip lost thresholds: %+v", again.Thresholds)
	}
}

func TestThresholdsOf(t *testing.T) {
	got := ThresholdsOf(threshold.Defaults())
	if len(got) != 3 {
		t.Fatalf("ThresholdsOf() returned %d tables, want 3", len(got))
	}
	if diff := cmp.Diff(threshold.Risk().Intervals, got["risk_level"]); diff != "" {
		t.Errorf("risk_level mismatch (-want +got):\n%s", diff)
	}
}
