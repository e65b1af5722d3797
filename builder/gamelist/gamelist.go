// Package gamelist merges placeholder entries into ES-DE's per-system
// gamelist.xml documents.
package gamelist

import (
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/go-i2p/esdummy/builder/xmldoc"
)

// PythonLabel is the alternative emulator label that makes ES-DE launch a
// game with the Python command added by the systems merger.
const PythonLabel = "Python"

// ErrEntryExists marks an entry skipped because its path is already listed.
var ErrEntryExists = errors.New("gamelist: entry already exists")

// Entry is a placeholder to be listed: a "./name.py" path relative to the
// system's ROM directory and the alternative emulator label to launch it with.
type Entry struct {
	Path        string
	AltEmulator string
}

// Game is one <game> record. Only the fields esdummy writes are typed; every
// other child element or attribute is preserved.
type Game struct {
	Attrs       []xml.Attr       `xml:",any,attr"`
	Comment     string           `xml:",comment"`
	Path        string           `xml:"path"`
	Extra       []xmldoc.Element `xml:",any"`
	AltEmulator string           `xml:"altemulator,omitempty"`
}

// GameList is the <gameList> document root.
type GameList struct {
	XMLName xml.Name         `xml:"gameList"`
	Comment string           `xml:",comment"`
	Extra   []xmldoc.Element `xml:",any"`
	Games   []Game           `xml:"game"`
}

// Paths returns the set of record paths in l.
func (l *GameList) Paths() map[string]struct{} {
	seen := make(map[string]struct{}, len(l.Games))
	for _, g := range l.Games {
		seen[g.Path] = struct{}{}
	}
	return seen
}

// Result is the outcome for one merged entry. Err is nil when the record was
// added and ErrEntryExists when it was skipped.
type Result struct {
	Entry Entry
	Err   error
}

// Added reports whether the entry produced a new record.
func (r Result) Added() bool { return r.Err == nil }

// Merge appends every entry whose path is not listed yet and returns one
// Result per entry. The list is changed in place.
func (l *GameList) Merge(entries []Entry) []Result {
	seen := l.Paths()
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Path]; dup {
			results = append(results, Result{Entry: e, Err: ErrEntryExists})
			continue
		}
		seen[e.Path] = struct{}{}
		l.Games = append(l.Games, Game{Path: e.Path, AltEmulator: e.AltEmulator})
		results = append(results, Result{Entry: e})
	}
	return results
}

// Prune removes the records whose path is in paths and returns how many were
// dropped.
func (l *GameList) Prune(paths map[string]struct{}) int {
	kept := l.Games[:0]
	for _, g := range l.Games {
		if _, drop := paths[g.Path]; !drop {
			kept = append(kept, g)
		}
	}
	n := len(l.Games) - len(kept)
	l.Games = kept
	return n
}

// Store locates and persists gamelists below Dir (ES-DE's "gamelists"
// directory).
type Store struct {
	Fs     afero.Fs
	Dir    string
	Logger zerolog.Logger
}

// Path returns the gamelist.xml location for system.
func (s *Store) Path(system string) string {
	return filepath.Join(s.Dir, system, "gamelist.xml")
}

// Load reads the gamelist for system, or returns an empty one when the
// document does not exist yet.
func (s *Store) Load(system string) (*GameList, error) {
	l := &GameList{}
	if _, err := xmldoc.Read(s.Fs, s.Path(system), l); err != nil {
		return nil, fmt.Errorf("gamelist: %w", err)
	}
	return l, nil
}

// Save writes l as the gamelist for system.
func (s *Store) Save(system string, l *GameList) error {
	if err := xmldoc.Write(s.Fs, s.Path(system), l); err != nil {
		return fmt.Errorf("gamelist: %w", err)
	}
	return nil
}

// Merge loads the gamelist for system, appends the entries that are not
// listed yet and persists the whole document once. Merging the same entries
// again leaves the document unchanged.
func (s *Store) Merge(system string, entries []Entry) ([]Result, error) {
	l, err := s.Load(system)
	if err != nil {
		return nil, err
	}
	path := s.Path(system)
	results := l.Merge(entries)
	for _, r := range results {
		if r.Err != nil {
			s.Logger.Warn().Str("path", path).Str("entry", r.Entry.Path).Msg("game entry already exists within file")
		}
	}
	if err := s.Save(system, l); err != nil {
		return nil, err
	}
	s.Logger.Info().Str("path", path).Int("games", len(l.Games)).Msg("successfully wrote gamelist")
	return results, nil
}

// Prune removes the given record paths from the gamelist of system. A
// missing gamelist is left alone.
func (s *Store) Prune(system string, paths map[string]struct{}) (int, error) {
	exists, err := afero.Exists(s.Fs, s.Path(system))
	if err != nil || !exists {
		return 0, err
	}
	l, err := s.Load(system)
	if err != nil {
		return 0, err
	}
	n := l.Prune(paths)
	if n == 0 {
		return 0, nil
	}
	if err := s.Save(system, l); err != nil {
		return 0, err
	}
	s.Logger.Info().Str("path", s.Path(system)).Int("removed", n).Msg("pruned gamelist")
	return n, nil
}
