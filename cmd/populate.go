package cmd

import (
	"github.com/spf13/cobra"
)

// populateCmd represents the populate command
var populateCmd = &cobra.Command{
	Use:   "populate <system> <identifier|url>",
	Short: "Create placeholders for one system from one archive item or directory listing",
	Long: `populate lists the files of an Internet Archive item (or the links of a web
directory listing when given a URL), keeps the ones matching rom_extensions
and not matching the blacklist, and writes a placeholder script for each into
library_path/<system>. New placeholders are added to the system's gamelist
and the system definition gains a "Python" launch command.

Examples:
  esdummy populate gba some-gba-collection
  esdummy populate snes https://example.org/roms/snes/`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd); err != nil {
			return err
		}
		rep, err := newComponents().Builder.Populate(cmd.Context(), args[0], args[1])
		if err != nil {
			logger.Error().Err(err).Msg("population failed")
			return err
		}
		logger.Info().
			Str("system", rep.System).
			Int("titles", rep.Titles).
			Int("created", rep.Created()).
			Stringer("definition", rep.Outcome).
			Msg("done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(populateCmd)
}
