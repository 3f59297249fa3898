package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/logging"
)

// Subject is one named context of a batch, e.g. the inputs of one ticker.
type Subject struct {
	Name    string       `yaml:"name" json:"name"`
	Context core.Context `yaml:"context" json:"context"`
}

type BatchOptions struct {
	Filter Filter

	// Workers bounds the number of subjects evaluated at once. Zero means one per CPU.
	Workers int

	// Logger receives a line per subject with failed rules. Defaults to the global zerolog logger.
	Logger logging.InternalLogger
}

// EvaluateBatch evaluates every subject in parallel. Reports are returned in
// the order of subjects. Cancelling ctx stops scheduling further subjects;
// subjects already being evaluated run to completion.
func (e *Engine) EvaluateBatch(ctx context.Context, subjects []Subject, opts BatchOptions) ([]*core.Report, error) {
	if _, err := e.Select(opts.Filter); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewZLogger(log.Logger)
	}

	reports := make([]*core.Report, len(subjects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, subject := range subjects {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := e.Evaluate(gctx, subject.Name, subject.Context, opts.Filter)
			if err != nil {
				return fmt.Errorf("evaluating subject '%s': %w", subject.Name, err)
			}
			if failed := report.Failed(); len(failed) > 0 {
				logger.Warn("subject '%s': %d of %d rules failed", subject.Name, len(failed), len(report.Verdicts))
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Info("evaluated %d subjects", len(subjects))
	return reports, nil
}
