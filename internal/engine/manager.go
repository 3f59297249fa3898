package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/verdict/internal/audit"
	"github.com/darmiel/verdict/internal/config"
	"github.com/darmiel/verdict/internal/core"
)

var _ core.Stateful = (*Manager)(nil)

// Manager holds the current engine. Readers always see a complete engine;
// a failed update keeps the previous one.
type Manager struct {
	currentEngine atomic.Pointer[Engine]
	mu            sync.Mutex
	auditor       core.Auditor
}

func NewManager(initial *Engine, auditor core.Auditor) *Manager {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	m := &Manager{auditor: auditor}
	m.currentEngine.Store(initial)
	return m
}

func (m *Manager) GetEngine() *Engine {
	return m.currentEngine.Load()
}

// Update builds a new engine from cfg and swaps it in.
func (m *Manager) Update(cfg *config.Config) error {
	return m.swap(cfg, audit.ActionReload)
}

func (m *Manager) swap(cfg *config.Config, action string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate, err := FromConfig(cfg, WithAuditor(m.auditor))
	ruleCount := 0
	if err == nil {
		ruleCount = candidate.Rules().Len()
	}
	if logErr := m.auditor.Log(audit.ReloadEntry(xid.New().String(), action, ruleCount, err)); logErr != nil {
		log.Warn().Err(logErr).Msg("failed to write audit entry")
	}
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	m.currentEngine.Store(candidate)
	log.Info().Msgf("loaded %d rules", ruleCount)
	return nil
}

// SnapshotState serializes the current ruleset, including the built-in rules
// and the effective threshold tables, as a self-contained config.
func (m *Manager) SnapshotState() (core.StateBlob, error) {
	eng := m.GetEngine()
	if eng == nil {
		return nil, fmt.Errorf("no engine loaded")
	}

	builtinEnabled := false
	snapshot := &config.Config{
		Builtin: &builtinEnabled,
		Rules:   eng.Rules().Defs(),
	}
	if src := eng.source; src != nil {
		tables, err := src.Tables()
		if err != nil {
			return nil, err
		}
		snapshot.Thresholds = config.ThresholdsOf(tables)
		snapshot.Estimators = src.Estimators
		snapshot.Audit = src.Audit
		snapshot.Workers = src.Workers
	}

	data, err := snapshot.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}
	return data, nil
}

// RestoreState rebuilds the engine from a blob produced by SnapshotState.
func (m *Manager) RestoreState(blob core.StateBlob) error {
	cfg, err := config.Parse(blob)
	if err != nil {
		return fmt.Errorf("parsing snapshot: %w", err)
	}
	return m.swap(cfg, audit.ActionRestore)
}
