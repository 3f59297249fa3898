package cmd

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/core"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Inspect the node kinds rules are built from",
}

var nodesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all registered node kinds with their signature",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadRuleset()
		if err != nil {
			return err
		}
		reg, err := cfg.Registry()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Inputs", "Arity", "Output", "Description"})
		for _, spec := range reg.Specs() {
			inputs := make([]string, len(spec.Inputs))
			for i, in := range spec.Inputs {
				inputs[i] = in.String()
			}
			if spec.Arity.Variadic && len(inputs) > 0 {
				inputs[len(inputs)-1] += "..."
			}
			output := spec.Output.String()
			if spec.Output == core.Any {
				output = faint("same as outcomes")
			}
			t.AppendRow(table.Row{bold(spec.Name), strings.Join(inputs, ", "), spec.Arity, output, spec.Description})
		}
		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nodesCmd)
	nodesCmd.AddCommand(nodesListCmd)

	f.bindRulesetFlag(nodesCmd.PersistentFlags())
}
