package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/buildinfo"
	"github.com/darmiel/verdict/internal/catalog"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the Verdict installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.GetBuildInfo()
		printInfo(&info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printInfo(info *buildinfo.Info) {
	fmt.Println(bold("\n── Verdict Build Information ──"))
	fmt.Printf("  %s:    %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:     %s\n", faint("Commit"), info.CommitHash)
	fmt.Printf("  %s:   %v\n", faint("Families"), catalog.Families())
}
