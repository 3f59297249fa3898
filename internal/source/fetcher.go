// Package source loads rulesets for reloading engines.
package source

import (
	"context"
	"errors"

	"github.com/darmiel/verdict/internal/config"
	"github.com/darmiel/verdict/internal/logging"
)

// ErrUnchanged is returned by a Fetcher when the ruleset did not change since the last fetch.
var ErrUnchanged = errors.New("ruleset unchanged")

type Fetcher interface {
	Fetch(ctx context.Context, log logging.InternalLogger) (*config.Config, error)
}
