package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-i2p/esdummy/config"
)

var (
	cfgFile string
	verbose bool
	c       *config.Conf = config.Default()
	logger               = zerolog.Nop()
	// appFs backs every file esdummy reads or writes. Tests swap it for a
	// MemMapFs.
	appFs afero.Fs = afero.NewOsFs()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "esdummy",
	Short: "Populate an ES-DE ROM library with download-on-launch placeholders",
	Long: `esdummy lists the files of Internet Archive items (or web directory
listings), writes one small Python placeholder per ROM into the library,
adds them to the ES-DE gamelists and registers a "Python" launch command for
the system. Launching a placeholder downloads and unpacks the real ROM.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/esdummy/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
}

// configFile is the document initConfig reads and init-config writes.
func configFile() string {
	if cfgFile != "" {
		return config.ExpandPath(cfgFile)
	}
	return config.DefaultConfigFile()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	viper.SetFs(appFs)
	config.SetDefaults(viper.GetViper())
	viper.SetConfigFile(configFile())
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(config.AppName)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup prepares an operational command: it writes the default
// configuration on first run, decodes and validates it into c and builds the
// run logger.
func setup(cmd *cobra.Command) error {
	path := configFile()
	created := false
	switch err := config.WriteDefault(appFs, path, false); {
	case err == nil:
		created = true
	case !errors.Is(err, config.ErrConfigExists):
		return err
	}
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	conf, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	c = conf

	l, err := newLogger(cmd, string(c.LogFile))
	if err != nil {
		return err
	}
	logger = l
	if created {
		logger.Info().Str("path", path).Msg("created default configuration file")
	}
	logger.Debug().Str("config", path).Str("library", string(c.LibraryPath)).Str("esde", string(c.ESDEPath)).Msg("configuration loaded")
	return nil
}
