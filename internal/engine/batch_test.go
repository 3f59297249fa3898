package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/darmiel/verdict/internal/builtin"
	"github.com/darmiel/verdict/internal/catalog"
	"github.com/darmiel/verdict/internal/logging/loggingtest"
)

func sampleSubjects(n int) []Subject {
	subjects := make([]Subject, n)
	for i := range subjects {
		subjects[i] = Subject{Name: fmt.Sprintf("T%03d", i), Context: builtin.SampleContext()}
	}
	return subjects
}

func TestEngine_EvaluateBatch(t *testing.T) {
	eng := newTestEngine(t)
	subjects := sampleSubjects(32)
	// one subject misses an estimator score
	delete(subjects[7].Context[catalog.PathModels].(map[string]any), catalog.EstimatorLGBM)

	recorder := &loggingtest.Recorder{}
	reports, err := eng.EvaluateBatch(context.Background(), subjects, BatchOptions{Workers: 4, Logger: recorder})
	if err != nil {
		t.Fatalf("EvaluateBatch() unexpected error: %v", err)
	}
	if len(reports) != len(subjects) {
		t.Fatalf("EvaluateBatch() returned %d reports, want %d", len(reports), len(subjects))
	}

	seen := make(map[string]struct{})
	for i, report := range reports {
		if report.Subject != subjects[i].Name {
			t.Errorf("report #%d subject = %s, want %s", i, report.Subject, subjects[i].Name)
		}
		if _, dup := seen[report.ID]; dup {
			t.Errorf("report id %s is not unique", report.ID)
		}
		seen[report.ID] = struct{}{}

		wantFailed := 0
		if i == 7 {
			wantFailed = 1
		}
		if got := len(report.Failed()); got != wantFailed {
			t.Errorf("report #%d has %d failed verdicts, want %d", i, got, wantFailed)
		}
	}

	lines := recorder.Lines()
	if len(lines) != 2 {
		t.Fatalf("logger lines = %v, want 2", lines)
	}
	if !strings.Contains(strings.Join(lines, "\n"), "subject 'T007': 1 of 6 rules failed") {
		t.Errorf("missing failure line, got %v", lines)
	}
}

func TestEngine_EvaluateBatch_Cancelled(t *testing.T) {
	eng := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.EvaluateBatch(ctx, sampleSubjects(8), BatchOptions{Workers: 2, Logger: &loggingtest.Recorder{}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("EvaluateBatch() error = %v, want context.Canceled", err)
	}
}

func TestEngine_EvaluateBatch_UnknownRule(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.EvaluateBatch(context.Background(), sampleSubjects(2), BatchOptions{
		Filter: Filter{RuleIDs: []string{"risk.nope"}},
	})
	if !errors.Is(err, ErrUnknownRule) {
		t.Errorf("EvaluateBatch() error = %v, want ErrUnknownRule", err)
	}
}
