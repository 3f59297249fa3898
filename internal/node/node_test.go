package node

import (
	"errors"
	"sync"
	"testing"

	"github.com/darmiel/verdict/internal/core"
)

func TestTerminal_Evaluate(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)
	rsi := mustCreate(reg, "var", Params{"path": "technical.rsi_14"})

	tests := []struct {
		name     string
		ctx      core.Context
		want     float64
		wantPath string
		wantType bool
	}{
		{
			name: "Nested value",
			ctx:  core.Context{"technical": map[string]any{"rsi_14": 72.3}},
			want: 72.3,
		},
		{
			name: "Integer widened",
			ctx:  core.Context{"technical": map[string]any{"rsi_14": uint64(70)}},
			want: 70,
		},
		{
			name:     "Missing leaf",
			ctx:      core.Context{"technical": map[string]any{}},
			wantPath: "technical.rsi_14",
		},
		{
			name:     "Missing parent",
			ctx:      core.Context{},
			wantPath: "technical.rsi_14",
		},
		{
			name:     "Parent is not a map",
			ctx:      core.Context{"technical": 3.0},
			wantPath: "technical.rsi_14",
		},
		{
			name:     "Boolean is not numeric",
			ctx:      core.Context{"technical": map[string]any{"rsi_14": true}},
			wantType: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rsi.Evaluate(tt.ctx)
			switch {
			case tt.wantPath != "":
				var notFound *core.NotFoundVarPathError
				if !errors.As(err, &notFound) {
					t.Fatalf("Evaluate() error = %v, want NotFoundVarPathError", err)
				}
				if notFound.Path != tt.wantPath {
					t.Errorf("NotFoundVarPathError.Path = %s, want %s", notFound.Path, tt.wantPath)
				}
				if !errors.Is(err, core.ErrEvaluation) {
					t.Errorf("error should classify as evaluation error")
				}
			case tt.wantType:
				var typeErr *core.VarTypeError
				if !errors.As(err, &typeErr) {
					t.Fatalf("Evaluate() error = %v, want VarTypeError", err)
				}
			default:
				if err != nil {
					t.Fatalf("Evaluate() unexpected error: %v", err)
				}
				if got.Type != core.Numeric || got.Number != tt.want {
					t.Errorf("Evaluate() = %v, want numeric %v", got, tt.want)
				}
			}
		})
	}
}

func TestBranch_UntakenSideIsNeverEvaluated(t *testing.T) {
	for _, cond := range []bool{true, false} {
		var boom int
		reg := testRegistry(&boom)

		safe := mustCreate(reg, "num", Params{"value": 42})
		trap := mustCreate(reg, "boom", nil)
		then, otherwise := safe, trap
		if !cond {
			then, otherwise = trap, safe
		}
		branch := mustCreate(reg, "if", nil, mustCreate(reg, "flag", Params{"value": cond}), then, otherwise)

		got, err := branch.Evaluate(core.Context{})
		if err != nil {
			t.Fatalf("cond=%v: Evaluate() unexpected error: %v", cond, err)
		}
		if got.Number != 42 {
			t.Errorf("cond=%v: Evaluate() = %v, want 42", cond, got)
		}
		if boom != 0 {
			t.Errorf("cond=%v: untaken branch was evaluated %d times", cond, boom)
		}

		_, steps, err := branch.Explain(core.Context{})
		if err != nil {
			t.Fatalf("cond=%v: Explain() unexpected error: %v", cond, err)
		}
		if boom != 0 {
			t.Errorf("cond=%v: Explain() evaluated the untaken branch", cond)
		}
		var skipped int
		for _, s := range steps {
			if s.Skipped {
				skipped++
				if s.Node != "boom" {
					t.Errorf("cond=%v: skipped step is %s, want boom", cond, s.Node)
				}
			}
		}
		if skipped != 1 {
			t.Errorf("cond=%v: %d skipped steps, want 1", cond, skipped)
		}
	}
}

func TestBranch_TakenSideErrorPropagates(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	branch := mustCreate(reg, "if", nil,
		mustCreate(reg, "flag", Params{"value": true}),
		mustCreate(reg, "boom", nil),
		mustCreate(reg, "num", Params{"value": 1}),
	)
	if _, err := branch.Evaluate(core.Context{}); !errors.Is(err, errBoom) {
		t.Fatalf("Evaluate() error = %v, want errBoom", err)
	}
	if boom != 1 {
		t.Errorf("taken branch evaluated %d times, want 1", boom)
	}
}

func TestCategory_Evaluate(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	risk := mustCreate(reg, "to_risk_level", nil, mustCreate(reg, "var", Params{"path": "score"}))

	got, err := risk.Evaluate(core.Context{"score": 0.65})
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	want := core.CategoryValue(core.RiskLevel, "high", 0.65)
	if got != want {
		t.Errorf("Evaluate() = %+v, want %+v", got, want)
	}

	_, err = risk.Evaluate(core.Context{"score": 1.5})
	var rangeErr *core.ValueOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("Evaluate() error = %v, want ValueOutOfRangeError", err)
	}
	if rangeErr.Value != 1.5 {
		t.Errorf("ValueOutOfRangeError.Value = %v, want 1.5", rangeErr.Value)
	}
}

func TestFunction_OperatorArityError(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	sum := mustCreate(reg, "sum", nil, mustCreate(reg, "num", Params{"value": 1}), mustCreate(reg, "num", Params{"value": 2}))
	sum.children = sum.children[:1]

	_, err := sum.Evaluate(core.Context{})
	var arityErr *core.OperatorArityError
	if !errors.As(err, &arityErr) {
		t.Fatalf("Evaluate() error = %v, want OperatorArityError", err)
	}
	if arityErr.Want != 2 || arityErr.Got != 1 {
		t.Errorf("unexpected error details: %+v", arityErr)
	}
}

func TestEvaluate_IdempotentAndConcurrent(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	tree := mustCreate(reg, "to_risk_level", nil,
		mustCreate(reg, "sum", nil,
			mustCreate(reg, "var", Params{"path": "a"}),
			mustCreate(reg, "var", Params{"path": "b"}),
		),
	)
	ctx := core.Context{"a": 0.25, "b": 0.5}

	first, err := tree.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	second, err := tree.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("repeated evaluation differs: %+v != %+v", first, second)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			local := core.Context{"a": float64(i) / 100, "b": 0.5}
			got, err := tree.Evaluate(local)
			if err != nil {
				errs <- err
				return
			}
			if got.Number != float64(i)/100+0.5 {
				errs <- errors.New("unexpected concurrent result")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestExplain_RecordsSteps(t *testing.T) {
	var boom int
	reg := testRegistry(&boom)

	tree := mustCreate(reg, "to_risk_level", nil,
		mustCreate(reg, "sum", nil,
			mustCreate(reg, "var", Params{"path": "a"}),
			mustCreate(reg, "var", Params{"path": "missing"}),
		),
	)
	_, steps, err := tree.Explain(core.Context{"a": 0.25})
	if err == nil {
		t.Fatalf("Explain() expected error, got nil")
	}

	wantNodes := []string{"to_risk_level", "sum", "var", "var"}
	wantDepth := []int{0, 1, 2, 2}
	if len(steps) != len(wantNodes) {
		t.Fatalf("got %d steps, want %d", len(steps), len(wantNodes))
	}
	for i, s := range steps {
		if s.Node != wantNodes[i] || s.Depth != wantDepth[i] {
			t.Errorf("step #%d = %s@%d, want %s@%d", i, s.Node, s.Depth, wantNodes[i], wantDepth[i])
		}
	}
	if steps[2].Value == nil || steps[2].Value.Number != 0.25 {
		t.Errorf("step #2 value = %v, want 0.25", steps[2].Value)
	}
	if steps[3].Error == "" || steps[3].Detail != "missing" {
		t.Errorf("step #3 = %+v, want error for path 'missing'", steps[3])
	}
	if steps[0].Error == "" {
		t.Errorf("root step should carry the propagated error")
	}
}
