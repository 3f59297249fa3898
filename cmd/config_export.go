package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/engine"
)

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the effective ruleset",
	Long: `Prints a self-contained ruleset containing every rule (built-in rules included)
and the effective threshold tables. The output can be loaded with --ruleset
and evaluates exactly like the exported ruleset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, auditor, err := f.GetEngine()
		if err != nil {
			return err
		}
		defer auditor.Close()

		blob, err := engine.NewManager(eng, auditor).SnapshotState()
		if err != nil {
			return fmt.Errorf("exporting ruleset: %w", err)
		}
		_, err = os.Stdout.Write(blob)
		return err
	},
}

func init() {
	configCmd.AddCommand(configExportCmd)
}
