package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/darmiel/verdict/internal/audit"
	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/logging/loggingtest"
	"github.com/darmiel/verdict/internal/source"
)

func TestManager_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruleset.yaml")
	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() unexpected error: %v", err)
		}
	}
	reloadErrors := func(auditor *audit.InMemoryAuditor) []core.AuditEntry {
		t.Helper()
		entries, err := auditor.Find(func(e core.AuditEntry) bool {
			return e.Action == audit.ActionReload && e.Error != ""
		}, 100)
		if err != nil {
			t.Fatalf("Find() unexpected error: %v", err)
		}
		return entries
	}

	auditor := audit.NewInMemoryAuditor()
	m := NewManager(newTestEngine(t), auditor)
	fetcher := source.NewFileFetcher(path)
	logger := &loggingtest.Recorder{}

	write("builtin: false\nrules: []\n")
	if err := m.Reload(context.Background(), fetcher, logger); err != nil {
		t.Fatalf("Reload() unexpected error: %v", err)
	}
	if got := m.GetEngine().Rules().Len(); got != 0 {
		t.Errorf("Rules().Len() = %d, want 0", got)
	}

	current := m.GetEngine()
	if err := m.Reload(context.Background(), fetcher, logger); err != nil {
		t.Fatalf("Reload() of an unchanged ruleset unexpected error: %v", err)
	}
	if m.GetEngine() != current {
		t.Errorf("unchanged ruleset swapped the engine")
	}

	// builds fail after validation
	write(`
rules:
  - id: risk.mistyped
    family: risk
    target: risk_level
    root: {node: to_risk_level, children: [{node: bool, params: {value: true}}]}
`)
	if err := m.Reload(context.Background(), fetcher, logger); err == nil {
		t.Fatalf("Reload() expected error for a mistyped rule")
	}
	if m.GetEngine() != current {
		t.Errorf("failed reload swapped the engine")
	}
	if got := len(reloadErrors(auditor)); got != 1 {
		t.Fatalf("failed reload entries = %d, want 1", got)
	}

	// validation fails before a build is attempted
	write(`
rules:
  - id: risk.unknown
    family: risk
    target: risk_level
    root: {node: no_such_node}
`)
	if err := m.Reload(context.Background(), fetcher, logger); err == nil {
		t.Fatalf("Reload() expected error for an unknown node")
	}
	if m.GetEngine() != current {
		t.Errorf("failed reload swapped the engine")
	}
	entries := reloadErrors(auditor)
	if len(entries) != 2 {
		t.Fatalf("failed reload entries = %d, want 2", len(entries))
	}
	if entries[1].Metadata["rules"] != 0 {
		t.Errorf("Metadata[rules] = %v, want 0", entries[1].Metadata["rules"])
	}
}
