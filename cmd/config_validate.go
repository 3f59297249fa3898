package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/verdict/internal/engine"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the ruleset file",
	Long: `Parses the ruleset, checks the threshold tables and estimator weights
and builds every rule, so type errors are reported before the ruleset is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadRuleset()
		if err != nil {
			log.Error().Err(err).Msg("Ruleset is invalid.")
			return err
		}
		eng, err := engine.FromConfig(cfg)
		if err != nil {
			log.Error().Err(err).Msg("Ruleset does not build.")
			return err
		}
		log.Info().Msgf("Ruleset is valid (%d rules).", eng.Rules().Len())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
