package cmd

import (
	"github.com/spf13/cobra"
)

// updateResourcesCmd represents the update-resources command
var updateResourcesCmd = &cobra.Command{
	Use:   "update-resources",
	Short: "Download the latest ES-DE reference systems file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd); err != nil {
			return err
		}
		return newComponents().Reference.Refresh(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(updateResourcesCmd)
}
