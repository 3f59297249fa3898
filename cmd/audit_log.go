package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/audit"
	"github.com/darmiel/verdict/internal/core"
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Display audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		path, err := cmd.Flags().GetString("file")
		if err != nil {
			return err
		}
		if path == "" {
			cfg, err := f.LoadRuleset()
			if err != nil {
				return err
			}
			if cfg.Audit.Type != audit.TypeFile {
				return fmt.Errorf("no audit file configured (use --file or a ruleset with a file auditor)")
			}
			path = cfg.Audit.Path
		}

		entries, err := audit.ReadFile(path, limit)
		if err != nil {
			return err
		}
		log.Info().Msgf("Retrieved %d audit entries", len(entries))

		printAuditEntries(entries)
		return nil
	},
}

func printAuditEntries(entries []core.AuditEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		"Time", "Action", "ID", "Subject", "Verdicts", "Error",
	})

	for _, e := range entries {
		labels := make([]string, 0, len(e.Verdicts))
		for _, v := range e.Verdicts {
			if v.Value == nil {
				continue
			}
			labels = append(labels, v.RuleID+"="+v.Value.Label)
		}

		t.AppendRow(table.Row{
			e.Time.Format(time.RFC3339),
			e.Action,
			e.ID,
			e.Subject,
			truncate(strings.Join(labels, " "), 60),
			e.Error,
		})
	}

	applyTableFormat(t)
	t.Render()
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	f.bindRulesetFlag(auditLogCmd.Flags())
	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit entries to show")
	auditLogCmd.Flags().String("file", "", "Audit file to read (default: from the ruleset)")
}
