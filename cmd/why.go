package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/core"
)

var whyCmd = &cobra.Command{
	Use:   "why RULE-ID",
	Short: "Explain how a rule arrives at its verdict",
	Long: `Evaluates a single rule and prints every node that was visited, with the
value it produced or the error it raised.
	The untaken side of a conditional is listed as skipped and is never evaluated.`,
	Example: `  # Why is ACME rated high risk?
  verdict why risk.ensemble -c acme.yaml

  # Trace a built-in rule against the sample context
  verdict why opportunity.growth --sample`,
	Args: cobra.ExactArgs(1),
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

		trace, err := eng.Explain(args[0], evalCtx)
		if err != nil {
			return err
		}
		printTrace(trace)
		return nil
	},
}

func printTrace(trace core.RuleTrace) {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Printf("\n%s for Rule: %s (Target: %s)\n", bold("Evaluation Trace"), bold(trace.RuleID), trace.Target)
	if trace.Description != "" {
		fmt.Printf("  %s\n", faint(trace.Description))
	}
	fmt.Println(faint("---------------------------------------------------"))

	for _, step := range trace.Steps {
		indent := strings.Repeat("  ", step.Depth)

		name := step.Node
		if step.Kind != "terminal" && step.Kind != "function" {
			name = cyan(name)
		}
		detail := ""
		if step.Detail != "" {
			detail = " " + faint("["+step.Detail+"]")
		}

		switch {
		case step.Skipped:
			fmt.Printf("    %s%s %s%s %s\n", indent, faint("○"), faint(step.Node), detail, faint("(skipped)"))
		case step.Error != "":
			fmt.Printf("    %s%s %s%s\n", indent, redCross, name, detail)
			fmt.Printf("    %s      ↳ %s\n", indent, yellow(step.Error))
		default:
			fmt.Printf("    %s%s %s%s = %s\n", indent, greenCheck, name, detail, step.Value)
		}
	}

	fmt.Println("---------------------------------------------------")
	if trace.Value != nil {
		fmt.Printf("Verdict: %s (score %v)\n", bold(labelColor(trace.Value)), trace.Value.Number)
	} else {
		fmt.Printf("Verdict: %s: %s\n", bold(red("failed")), trace.Error)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(whyCmd)

	f.bindRulesetFlag(whyCmd.Flags())
	f.bindContextFlags(whyCmd.Flags())
}
