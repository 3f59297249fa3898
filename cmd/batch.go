package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/engine"
	"github.com/darmiel/verdict/internal/logging"
)

var (
	batchSubjectsPath string
	batchFamilies     []string
	batchWorkers      int
	batchOutput       string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate the ruleset against many subjects in parallel",
	Long: `Reads a YAML or JSON list of subjects, each with a name and a context:

  - name: ACME
    context:
      technical: {rsi_14: 28.5, ...}
  - name: INITECH
    context: ...

and prints one row per subject with the label of every rule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, auditor, err := f.GetEngine()
		if err != nil {
			return err
		}
		defer auditor.Close()

		var subjects []engine.Subject
		if err := readYAML(batchSubjectsPath, &subjects); err != nil {
			return fmt.Errorf("reading subjects: %w", err)
		}

		workers := batchWorkers
		if workers == 0 {
			workers = eng.Workers()
		}

		reports, err := eng.EvaluateBatch(cmd.Context(), subjects, engine.BatchOptions{
			Filter:  engine.Filter{Families: batchFamilies},
			Workers: workers,
			Logger:  logging.NewZLogger(log.Logger),
		})
		if err != nil {
			return err
		}

		if batchOutput != outputTable {
			return writeStructured(os.Stdout, batchOutput, reports)
		}
		printBatch(reports)
		return nil
	},
}

func printBatch(reports []*core.Report) {
	if len(reports) == 0 {
		log.Warn().Msg("no subjects evaluated")
		return
	}

	header := table.Row{"Subject"}
	for _, v := range reports[0].Verdicts {
		header = append(header, v.RuleID)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(header)
	for _, report := range reports {
		row := table.Row{bold(report.Subject)}
		for _, v := range report.Verdicts {
			if v.Value == nil {
				row = append(row, redCross)
				continue
			}
			row = append(row, labelColor(v.Value))
		}
		t.AppendRow(row)
	}
	applyTableFormat(t)
	t.Render()
}

func init() {
	rootCmd.AddCommand(batchCmd)

	f.bindRulesetFlag(batchCmd.Flags())
	batchCmd.Flags().StringVarP(&batchSubjectsPath, "subjects", "s", "", "YAML or JSON file containing the subjects")
	batchCmd.Flags().StringSliceVar(&batchFamilies, "family", nil, "Only evaluate rules of these families")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Number of subjects evaluated in parallel (default: ruleset setting or one per CPU)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", outputTable, "Output format (table, json, yaml)")

	_ = batchCmd.MarkFlagRequired("subjects")
}
