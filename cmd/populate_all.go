package cmd

import (
	"github.com/spf13/cobra"
)

// populateAllCmd represents the populate-all command
var populateAllCmd = &cobra.Command{
	Use:   "populate-all",
	Short: "Run populate for every system and target listed in rom_archives",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd); err != nil {
			return err
		}
		reports, err := newComponents().Builder.PopulateAll(cmd.Context())
		created := 0
		for _, rep := range reports {
			created += rep.Created()
		}
		if err != nil {
			// Individual failures were logged as they happened and do not
			// change the exit status.
			logger.Warn().Err(err).Msg("some targets could not be populated")
		}
		logger.Info().Int("targets", len(reports)).Int("created", created).Msg("done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(populateAllCmd)
}
