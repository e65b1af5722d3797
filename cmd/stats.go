package cmd

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/go-i2p/esdummy/config"
	dummystats "github.com/go-i2p/esdummy/stats"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many placeholders have been created per system",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if err := setup(cmd); err != nil {
			return err
		}
		st := dummystats.New(appFs, string(c.StatsFile))
		if out != "" {
			path := config.ExpandPath(out)
			var buf bytes.Buffer
			if err := st.Graph(&buf); err != nil {
				return err
			}
			if err := afero.WriteFile(appFs, path, buf.Bytes(), 0o644); err != nil {
				return err
			}
			logger.Info().Str("path", path).Msg("wrote chart")
			return nil
		}
		printStats(cmd, st)
		return nil
	},
}

func printStats(cmd *cobra.Command, st *dummystats.PopulationStats) {
	names := make([]string, 0, len(st.Systems))
	for name := range st.Systems {
		names = append(names, name)
	}
	sort.Strings(names)
	w := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintf(w, "%-12s %d\n", name, st.Systems[name])
	}
	fmt.Fprintf(w, "%-12s %d\n", "total", st.Total())
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("out", "", "write an SVG bar chart to this file instead of printing")
}
