package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var debugContextPaths []string

var debugContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Dumps an evaluation context as the engine sees it",
	Long: `Parses the context file and dumps it including the Go types of all values.
Useful to see why a variable is reported as missing or as having the wrong type.
Each --path is resolved like a 'var' node would resolve it.`,
	Example: `  verdict debug context -c acme.yaml --path technical.rsi_14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		evalCtx, err := f.LoadContext()
		if err != nil {
			return err
		}

		log.Info().Msg("Evaluation Context:")
		fmt.Println(spew.Sdump(evalCtx))

		for _, path := range debugContextPaths {
			value, err := evalCtx.Resolve(path)
			if err != nil {
				log.Warn().Err(err).Msgf("%s", path)
				continue
			}
			log.Info().Msgf("%s = %s", path, spew.Sprintf("%#v", value))
		}
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugContextCmd)

	f.bindContextFlags(debugContextCmd.Flags())
	debugContextCmd.Flags().StringSliceVarP(&debugContextPaths, "path", "p", nil, "Variable paths to resolve")
}
