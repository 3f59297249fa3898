package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/engine"
)

var (
	evalFamilies []string
	evalRules    []string
	evalSubject  string
	evalOutput   string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate the ruleset against a context",
	Long: `Evaluates every rule of the ruleset (or the selected families / rules)
against one evaluation context and prints the verdict of each rule.

A rule that cannot be evaluated (missing variable, value outside of its
threshold table, ...) is reported with its error; the other rules are still evaluated.`,
	Example: `  # evaluate the built-in rules against the sample context
  verdict eval --sample

  # evaluate only risk rules of a custom ruleset
  verdict eval -f ruleset.yaml -c acme.yaml --family risk -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, auditor, err := f.GetEngine()
		if err != nil {
			return err
		}
		defer auditor.Close()

		evalCtx, err := f.LoadContext()
		if err != nil {
			return err
		}

		report, err := eng.Evaluate(cmd.Context(), evalSubject, evalCtx, engine.Filter{
			Families: evalFamilies,
			RuleIDs:  evalRules,
		})
		if err != nil {
			return err
		}
		log.Debug().Msgf("report %s: %d verdicts", report.ID, len(report.Verdicts))

		if evalOutput != outputTable {
			return writeStructured(os.Stdout, evalOutput, report)
		}
		printReport(report)
		if failed := report.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d rules failed", len(failed), len(report.Verdicts))
		}
		return nil
	},
}

func printReport(report *core.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"", "Rule", "Target", "Verdict", "Score", "Error"})

	for _, v := range report.Verdicts {
		icon, label, score := redCross, "", ""
		if v.Value != nil {
			icon = greenCheck
			label = labelColor(v.Value)
			score = strconv.FormatFloat(v.Value.Number, 'f', 4, 64)
		}
		t.AppendRow(table.Row{icon, bold(v.RuleID), v.Target, label, score, truncate(v.Error, 60)})
	}

	title := "Report " + report.ID
	if report.Subject != "" {
		title += " for " + report.Subject
	}
	t.SetTitle(title)
	applyTableFormat(t)
	t.Render()
}

func init() {
	rootCmd.AddCommand(evalCmd)

	f.bindRulesetFlag(evalCmd.Flags())
	f.bindContextFlags(evalCmd.Flags())
	evalCmd.Flags().StringSliceVar(&evalFamilies, "family", nil, "Only evaluate rules of these families (decision, risk, opportunity)")
	evalCmd.Flags().StringSliceVarP(&evalRules, "rule", "r", nil, "Only evaluate these rule ids")
	evalCmd.Flags().StringVar(&evalSubject, "subject", "", "Name of the evaluated subject, e.g. a ticker")
	evalCmd.Flags().StringVarP(&evalOutput, "output", "o", outputTable, "Output format (table, json, yaml)")
}
