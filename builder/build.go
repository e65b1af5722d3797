// Package dummybuilder turns archive listings into ES-DE placeholder entries:
// it writes the placeholder scripts, lists them in the system's gamelist and
// makes sure the custom systems document knows how to launch them.
package dummybuilder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/go-i2p/esdummy/builder/gamelist"
	"github.com/go-i2p/esdummy/builder/systems"
	"github.com/go-i2p/esdummy/config"
	dummyfetch "github.com/go-i2p/esdummy/fetch"
	dummylisting "github.com/go-i2p/esdummy/listing"
)

// Lister enumerates candidate titles for a URL or archive identifier.
type Lister interface {
	List(ctx context.Context, target string, filters []string) []string
}

// SystemMerger adds the Python launcher to a system definition.
type SystemMerger interface {
	Merge(ctx context.Context, system string) (systems.Outcome, error)
}

// StatsRecorder keeps per-system placeholder counts.
type StatsRecorder interface {
	Add(system string, n int)
	Save() error
}

// Report summarises one Populate call.
type Report struct {
	System   string
	Target   string
	Titles   int
	Results  []Result
	Gamelist []gamelist.Result
	Outcome  systems.Outcome
}

// Created counts the placeholders written.
func (r *Report) Created() int {
	n := 0
	for _, res := range r.Results {
		if res.Created() {
			n++
		}
	}
	return n
}

type DummyBuilder struct {
	Lister     Lister
	Generator  *Generator
	Gamelists  *gamelist.Store
	Systems    SystemMerger
	Stats      StatsRecorder // optional
	Blacklist  []string
	Extensions []string
	Archives   map[string][]string
	Logger     zerolog.Logger
}

// Builder wires a DummyBuilder from the configuration. ref supplies the
// cached reference systems document; st may be nil.
func Builder(c *config.Conf, fsys afero.Fs, fetcher *dummyfetch.Fetcher, ref systems.ReferenceProvider, st StatsRecorder, logger zerolog.Logger) *DummyBuilder {
	db := &DummyBuilder{
		Lister: &dummylisting.Lister{
			Fetcher: fetcher,
			Archive: &dummylisting.ArchiveClient{Fetcher: fetcher, BaseURL: c.ArchiveURL},
			Logger:  logger,
		},
		Generator: &Generator{Fs: fsys, LibraryPath: string(c.LibraryPath), Logger: logger},
		Gamelists: &gamelist.Store{Fs: fsys, Dir: c.GamelistsDir(), Logger: logger},
		Systems: &systems.Merger{
			Fs:         fsys,
			Reference:  ref,
			CustomPath: c.CustomSystemsFile(),
			Launcher:   c.Launcher(),
			Logger:     logger,
		},
		Blacklist:  c.Blacklist,
		Extensions: c.ROMExtensions,
		Archives:   c.ROMArchives,
		Stats:      st,
		Logger:     logger,
	}
	return db
}

// ReferenceUnavailable reports whether err comes from fetching the reference
// systems file rather than from reading or writing a local document.
func ReferenceUnavailable(err error) bool {
	return dummyfetch.IsFetchError(err) || errors.Is(err, config.ErrUnsupportedPlatform)
}

// Populate lists target, writes placeholders for the accepted titles and,
// when anything new was written, merges them into the gamelist and the
// custom systems document of system. A reference file that cannot be fetched
// is logged and leaves Outcome at NotFound without failing the call.
func (db *DummyBuilder) Populate(ctx context.Context, system, target string) (*Report, error) {
	log := db.Logger.With().Str("system", system).Str("target", target).Logger()
	log.Info().Msg("initiating library population")

	titles := db.Lister.List(ctx, target, db.Extensions)
	rep := &Report{System: system, Target: target, Titles: len(titles)}
	rep.Results = db.Generator.Generate(system, target, titles, db.Blacklist)

	entries := Entries(rep.Results)
	if len(entries) == 0 {
		log.Info().Int("titles", len(titles)).Msg("no new placeholders to add")
		return rep, nil
	}

	gl, err := db.Gamelists.Merge(system, entries)
	if err != nil {
		return rep, fmt.Errorf("dummybuilder: %s: %w", system, err)
	}
	rep.Gamelist = gl

	if db.Stats != nil {
		db.Stats.Add(system, len(entries))
		if err := db.Stats.Save(); err != nil {
			log.Warn().Err(err).Msg("could not save population stats")
		}
	}

	outcome, err := db.Systems.Merge(ctx, system)
	switch {
	case ReferenceUnavailable(err):
		// The placeholders are listed already; add-system can finish the
		// definition once the reference file is reachable.
		log.Warn().Err(err).Msg("reference systems file unavailable, system definition not updated")
	case err != nil:
		return rep, fmt.Errorf("dummybuilder: %s: %w", system, err)
	}
	rep.Outcome = outcome

	log.Info().Int("titles", len(titles)).Int("created", len(entries)).Msg("library population complete")
	return rep, nil
}

// PopulateAll runs Populate for every configured system (sorted by name) and
// every target listed for it. A failing pair is logged and the batch carries
// on; the joined errors are returned once everything has run.
func (db *DummyBuilder) PopulateAll(ctx context.Context) ([]*Report, error) {
	db.Logger.Info().Msg("populating ROM directories with all available ROM titles")
	names := make([]string, 0, len(db.Archives))
	for name := range db.Archives {
		names = append(names, name)
	}
	sort.Strings(names)

	var reports []*Report
	var errs []error
	for _, system := range names {
		for _, target := range db.Archives[system] {
			rep, err := db.Populate(ctx, system, target)
			if err != nil {
				db.Logger.Error().Err(err).Str("system", system).Str("target", target).Msg("population failed")
				errs = append(errs, err)
			}
			reports = append(reports, rep)
		}
	}
	return reports, errors.Join(errs...)
}

// Clean deletes every placeholder script below the library path. With
// gamelists set, the matching "./name.py" records are pruned from each
// system's gamelist as well.
func (db *DummyBuilder) Clean(gamelists bool) ([]string, error) {
	fsys := db.Generator.Fs
	root := db.Generator.LibraryPath
	var removed []string
	bySystem := make(map[string]map[string]struct{})

	exists, err := afero.DirExists(fsys, root)
	if err != nil || !exists {
		return nil, err
	}
	err = afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ScriptExtension {
			return nil
		}
		if err := fsys.Remove(path); err != nil {
			return fmt.Errorf("dummybuilder: remove %s: %w", path, err)
		}
		removed = append(removed, path)
		db.Logger.Info().Str("file", path).Msg("deleted file")

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) == 2 {
			if bySystem[parts[0]] == nil {
				bySystem[parts[0]] = make(map[string]struct{})
			}
			bySystem[parts[0]]["./"+parts[1]] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	if !gamelists {
		return removed, nil
	}
	var errs []error
	for system, paths := range bySystem {
		if _, err := db.Gamelists.Prune(system, paths); err != nil {
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}
