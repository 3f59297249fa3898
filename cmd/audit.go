package cmd

import (
	"github.com/spf13/cobra"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log of produced verdicts",
	Long:  `Reads the audit file written when a ruleset enables 'audit: {type: file}'.`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
