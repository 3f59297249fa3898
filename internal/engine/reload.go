package engine

import (
	"context"
	"errors"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/verdict/internal/audit"
	"github.com/darmiel/verdict/internal/logging"
	"github.com/darmiel/verdict/internal/source"
)

// Reload fetches the ruleset and swaps it in. An unchanged ruleset is not an error;
// a ruleset that fails to build keeps the current engine.
func (m *Manager) Reload(ctx context.Context, fetcher source.Fetcher, logger logging.InternalLogger) error {
	cfg, err := fetcher.Fetch(ctx, logger)
	if errors.Is(err, source.ErrUnchanged) {
		return nil
	}
	if err != nil {
		// the ruleset did not parse or validate, so Update never sees it
		if logErr := m.auditor.Log(audit.ReloadEntry(xid.New().String(), audit.ActionReload, 0, err)); logErr != nil {
			log.Warn().Err(logErr).Msg("failed to write audit entry")
		}
		return err
	}
	if err := m.Update(cfg); err != nil {
		return err
	}
	logger.Info("swapped engine, %d rules active", m.GetEngine().Rules().Len())
	return nil
}
