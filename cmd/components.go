package cmd

import (
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	dummybuilder "github.com/go-i2p/esdummy/builder"
	dummyfetch "github.com/go-i2p/esdummy/fetch"
	"github.com/go-i2p/esdummy/logging"
	dummystats "github.com/go-i2p/esdummy/stats"
)

// retryWait is the shortest pause between fetch attempts.
var retryWait = 2 * time.Second

func newLogger(cmd *cobra.Command, logFile string) (zerolog.Logger, error) {
	l, err := logging.New(cmd.ErrOrStderr(), logFile, verbose)
	if err != nil {
		return zerolog.Nop(), err
	}
	return l.With().Str("run", uuid.NewString()).Str("command", cmd.Name()).Logger(), nil
}

// components are the collaborators built from the loaded configuration.
type components struct {
	Fetcher   *dummyfetch.Fetcher
	Reference *dummyfetch.Reference
	Stats     *dummystats.PopulationStats
	Builder   *dummybuilder.DummyBuilder
}

func newComponents() *components {
	fetcher := dummyfetch.NewFetcher(c.FetchRetries, retryWait, logger)
	ref := &dummyfetch.Reference{
		Fetcher: fetcher,
		Fs:      appFs,
		Path:    string(c.ReferenceFile),
		URLs:    c,
		GOOS:    runtime.GOOS,
		Logger:  logger,
	}
	st := dummystats.New(appFs, string(c.StatsFile))
	return &components{
		Fetcher:   fetcher,
		Reference: ref,
		Stats:     st,
		Builder:   dummybuilder.Builder(c, appFs, fetcher, ref, st, logger),
	}
}
