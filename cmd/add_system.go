package cmd

import (
	"github.com/spf13/cobra"
)

// addSystemCmd represents the add-system command
var addSystemCmd = &cobra.Command{
	Use:   "add-system <system>",
	Short: "Add the Python launch command to one system definition",
	Long: `add-system copies <system> from the ES-DE reference systems file into the
custom systems file, accepting .py files and ending its command list with a
"Python" command. Running it again replaces the earlier copy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd); err != nil {
			return err
		}
		outcome, err := newComponents().Builder.Systems.Merge(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		logger.Info().Str("system", args[0]).Stringer("outcome", outcome).Msg("done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addSystemCmd)
}
