package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/node"
	"github.com/darmiel/verdict/internal/rule"
)

var rulesFamily string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the rules of a ruleset",
}

var rulesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, auditor, err := f.GetEngine()
		if err != nil {
			return err
		}
		defer auditor.Close()

		rules := eng.Rules().All()
		if rulesFamily != "" {
			rules = eng.Rules().Family(rulesFamily)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Family", "Target", "Description"})
		for _, r := range rules {
			meta := r.Meta()
			t.AppendRow(table.Row{bold(meta.ID), meta.Family, meta.Target, truncate(meta.Description, 60)})
		}
		applyTableFormat(t)
		t.Render()
		return nil
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show RULE-ID",
	Short: "Show the tree of a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, auditor, err := f.GetEngine()
		if err != nil {
			return err
		}
		defer auditor.Close()

		r, ok := eng.Rules().Get(args[0])
		if !ok {
			return fmt.Errorf("unknown rule '%s'", args[0])
		}

		meta := r.Meta()
		fmt.Printf("%s  %s\n", bold(meta.ID), faint(meta.Description))
		fmt.Printf("  %s %s\n\n", faint("formula:"), node.Format(r.Root()))

		data, err := yaml.Marshal(rule.Describe(r))
		if err != nil {
			return fmt.Errorf("marshalling rule: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesShowCmd)

	f.bindRulesetFlag(rulesCmd.PersistentFlags())
	rulesListCmd.Flags().StringVar(&rulesFamily, "family", "", "Only list rules of this family")
}
