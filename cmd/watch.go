package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/audit"
	"github.com/darmiel/verdict/internal/engine"
	"github.com/darmiel/verdict/internal/logging"
	"github.com/darmiel/verdict/internal/source"
	"github.com/darmiel/verdict/internal/tasks"
)

const (
	taskReload   = "ruleset-reload"
	taskEvaluate = "batch-evaluate"
)

var (
	watchReloadInterval time.Duration
	watchEvalInterval   time.Duration
	watchSubjectsPath   string
	watchFamilies       []string
	watchAuditLimit     int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the ruleset when it changes and evaluate subjects periodically",
	Long: `Watches the ruleset file and swaps in the new rules whenever its content
changes. File events trigger a reload immediately; --reload-interval polls as a fallback. A ruleset that does not build is logged and the previous rules stay active.

With --subjects, all subjects are evaluated on every --eval-interval.
Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := f.rulesetPath()
		if path == "" {
			return fmt.Errorf("watch needs a ruleset file (use --ruleset)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		zl := logging.NewZLogger(log.Logger)
		fetcher := source.NewFileFetcher(path)

		cfg, err := fetcher.Fetch(ctx, zl)
		if err != nil {
			return err
		}
		auditor, err := audit.New(cfg.Audit)
		if err != nil {
			return fmt.Errorf("creating auditor: %w", err)
		}
		defer auditor.Close()

		eng, err := engine.FromConfig(cfg, engine.WithAuditor(auditor))
		if err != nil {
			return fmt.Errorf("building rules: %w", err)
		}
		manager := engine.NewManager(eng, auditor)

		tm := tasks.NewManager()
		if err := tm.Register(tasks.TaskDefinition{
			Name:     taskReload,
			Interval: watchReloadInterval,
			Timeout:  watchReloadInterval,
			Handler: func(ctx context.Context, logger logging.InternalLogger) error {
				return manager.Reload(ctx, fetcher, logger)
			},
		}); err != nil {
			return err
		}

		if watchSubjectsPath != "" {
			if err := tm.Register(tasks.TaskDefinition{
				Name:     taskEvaluate,
				Interval: watchEvalInterval,
				Handler: func(ctx context.Context, logger logging.InternalLogger) error {
					var subjects []engine.Subject
					if err := readYAML(watchSubjectsPath, &subjects); err != nil {
						return fmt.Errorf("reading subjects: %w", err)
					}
					current := manager.GetEngine()
					_, err := current.EvaluateBatch(ctx, subjects, engine.BatchOptions{
						Filter:  engine.Filter{Families: watchFamilies},
						Workers: current.Workers(),
						Logger:  logger,
					})
					return err
				},
			}); err != nil {
				return err
			}
		}

		log.Info().Msgf("watching '%s', press Ctrl+C to stop", path)
		tm.Start(ctx)

		// reload right away on file events; the interval stays as a fallback
		watchDone := make(chan error, 1)
		go func() {
			watchDone <- source.Watch(ctx, path, source.DefaultDebounce, zl, func() {
				if err := tm.Trigger(ctx, taskReload); err != nil {
					log.Warn().Err(err).Msg("reload failed, keeping current rules")
				}
			})
		}()

		<-ctx.Done()
		if err := <-watchDone; err != nil {
			log.Warn().Err(err).Msg("file watcher stopped")
		}
		tm.Wait()

		printTaskStatus(tm.ListStatus())
		if mem, ok := auditor.(*audit.InMemoryAuditor); ok {
			printSessionAudit(mem)
		}
		return nil
	},
}

func printTaskStatus(list []tasks.TaskStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Task", "Runs", "Last Run", "Last Result"})
	for _, status := range list {
		lastRun := faint("never")
		if !status.LastRun.IsZero() {
			lastRun = status.LastRun.Format(time.DateTime)
		}
		t.AppendRow(table.Row{bold(status.Name), status.Runs, lastRun, truncate(status.LastResult, 60)})
	}
	applyTableFormat(t)
	t.Render()
}

// printSessionAudit shows what a memory auditor collected, since it is lost on exit.
func printSessionAudit(mem *audit.InMemoryAuditor) {
	entries, err := mem.GetRecent(watchAuditLimit)
	if err != nil || len(entries) == 0 {
		return
	}
	fmt.Printf("\n%s\n", bold("Session audit"))
	if dropped := mem.Dropped(); dropped > 0 {
		fmt.Println(faint(fmt.Sprintf("%d older entries were dropped", dropped)))
	}
	printAuditEntries(entries)
}

func init() {
	rootCmd.AddCommand(watchCmd)

	f.bindRulesetFlag(watchCmd.Flags())
	watchCmd.Flags().DurationVar(&watchReloadInterval, "reload-interval", 10*time.Second, "How often the ruleset file is checked for changes")
	watchCmd.Flags().DurationVar(&watchEvalInterval, "eval-interval", time.Minute, "How often the subjects are evaluated")
	watchCmd.Flags().StringVarP(&watchSubjectsPath, "subjects", "s", "", "YAML or JSON file containing the subjects to evaluate")
	watchCmd.Flags().StringSliceVar(&watchFamilies, "family", nil, "Only evaluate rules of these families")
	watchCmd.Flags().IntVar(&watchAuditLimit, "audit-limit", 25, "Entries of a memory auditor shown when watch stops")
}
