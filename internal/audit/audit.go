// Package audit records produced verdict reports and ruleset reloads.
package audit

import (
	"fmt"
	"time"

	"github.com/darmiel/verdict/internal/core"
)

const (
	TypeFile   = "file"
	TypeMemory = "memory"
	TypeNoop   = "noop"
)

const (
	ActionEvaluate = "rules.evaluate"
	ActionReload   = "rules.reload"
	ActionRestore  = "rules.restore"
)

// Config selects the auditor a ruleset writes to.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type"` // "file", "memory" or "noop"
	Path    string `yaml:"path"`

	// Capacity bounds the entries kept by the memory auditor. Zero means DefaultMemoryCapacity.
	Capacity int `yaml:"capacity,omitempty"`
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Capacity < 0 {
		return fmt.Errorf("audit capacity must not be negative")
	}
	switch c.Type {
	case TypeFile:
		if c.Path == "" {
			return fmt.Errorf("audit type 'file' requires a path")
		}
	case TypeMemory, TypeNoop, "":
	default:
		return fmt.Errorf("unknown audit type '%s'", c.Type)
	}
	return nil
}

// New creates the auditor described by cfg. A disabled config yields a NoopAuditor.
func New(cfg Config) (core.Auditor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case TypeFile:
		return NewFileAuditor(cfg.Path)
	case TypeMemory:
		return NewBoundedAuditor(cfg.Capacity), nil
	default:
		return NewNoopAuditor(), nil
	}
}

// EvaluationEntry creates the entry for a produced report.
func EvaluationEntry(report *core.Report) core.AuditEntry {
	entry := core.AuditEntry{
		ID:       report.ID,
		Time:     report.Time,
		Action:   ActionEvaluate,
		Subject:  report.Subject,
		Verdicts: report.Verdicts,
	}
	if failed := report.Failed(); len(failed) > 0 {
		entry.Error = fmt.Sprintf("%d of %d rules failed", len(failed), len(report.Verdicts))
	}
	return entry
}

// ReloadEntry creates the entry for a ruleset swap. A nil err records a successful reload.
func ReloadEntry(id, action string, ruleCount int, err error) core.AuditEntry {
	entry := core.AuditEntry{
		ID:     id,
		Time:   time.Now(),
		Action: action,
		Metadata: map[string]any{
			"rules": ruleCount,
		},
	}
	if err != nil {
		entry.Error = err.Error()
	}
	return entry
}
