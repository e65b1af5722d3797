package cmd

import (
	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete every generated placeholder script from the library",
	Long: `clean removes all .py files below library_path. Downloaded ROMs are left
alone. With --gamelists the matching Python entries are pruned from the ES-DE
gamelists too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prune, _ := cmd.Flags().GetBool("gamelists")
		if err := setup(cmd); err != nil {
			return err
		}
		removed, err := newComponents().Builder.Clean(prune)
		logger.Info().Int("removed", len(removed)).Bool("gamelists", prune).Msg("done")
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("gamelists", false, "also remove the placeholder entries from the gamelists")
}
