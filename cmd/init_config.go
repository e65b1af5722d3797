package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-i2p/esdummy/config"
)

// initConfigCmd represents the init-config command
var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path := configFile()
		if err := config.WriteDefault(appFs, path, force); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().Bool("force", false, "overwrite an existing configuration file")
}
