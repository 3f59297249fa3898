package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Interact with the ruleset configuration",
	Long:  `Utilities for validating and exporting rulesets`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	f.bindRulesetFlag(configCmd.PersistentFlags())
}
