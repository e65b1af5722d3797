package dummybuilder

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/go-i2p/esdummy/builder/gamelist"
)

// ScriptExtension marks files generated by esdummy. Clean removes every file
// carrying it.
const ScriptExtension = ".py"

var (
	// ErrBlacklisted marks a title containing a blacklisted substring.
	ErrBlacklisted = errors.New("dummybuilder: title is blacklisted")
	// ErrFileExists marks a title whose placeholder is already on disk.
	ErrFileExists = errors.New("dummybuilder: file already exists")
)

// NameEncodingError reports a title whose placeholder name cannot be
// represented as a file name.
type NameEncodingError struct {
	Title  string
	Reason string
}

func (e *NameEncodingError) Error() string {
	return fmt.Sprintf("dummybuilder: cannot derive file name from %q: %s", e.Title, e.Reason)
}

// Result is the outcome of one title. Err is nil when the placeholder was
// created; otherwise it is ErrBlacklisted, ErrFileExists, a
// *NameEncodingError or an I/O error, and Entry is empty.
type Result struct {
	Title string
	File  string
	Entry gamelist.Entry
	Err   error
}

// Created reports whether a placeholder was written.
func (r Result) Created() bool { return r.Err == nil }

// Entries returns the gamelist entries of the created placeholders.
func Entries(results []Result) []gamelist.Entry {
	var entries []gamelist.Entry
	for _, r := range results {
		if r.Created() {
			entries = append(entries, r.Entry)
		}
	}
	return entries
}

// Blacklisted reports whether title contains any of the blacklist substrings.
func Blacklisted(title string, blacklist []string) bool {
	for _, w := range blacklist {
		if w != "" && strings.Contains(title, w) {
			return true
		}
	}
	return false
}

// PlaceholderName derives the script name for title: the stem of its base
// name plus ScriptExtension, NFC-normalised.
func PlaceholderName(title string) (string, error) {
	if !utf8.ValidString(title) {
		return "", &NameEncodingError{Title: title, Reason: "invalid UTF-8"}
	}
	if strings.ContainsRune(title, 0) {
		return "", &NameEncodingError{Title: title, Reason: "NUL byte"}
	}
	base := path.Base(filepath.ToSlash(title))
	stem := strings.TrimSuffix(base, path.Ext(base))
	stem = norm.NFC.String(strings.TrimSpace(stem))
	if stem == "" || stem == "." || stem == ".." || stem == "/" {
		return "", &NameEncodingError{Title: title, Reason: "empty file name"}
	}
	return stem + ScriptExtension, nil
}

// Generator writes placeholder scripts into LibraryPath/<system>.
type Generator struct {
	Fs          afero.Fs
	LibraryPath string
	Logger      zerolog.Logger
}

// SystemDir is where the placeholders (and later the real ROMs) of system
// live.
func (g *Generator) SystemDir(system string) string {
	return filepath.Join(g.LibraryPath, system)
}

// Generate writes one placeholder per accepted title and returns a Result
// for every title, in input order. Skipped titles never stop the batch.
func (g *Generator) Generate(system, identifier string, titles, blacklist []string) []Result {
	dir := g.SystemDir(system)
	results := make([]Result, 0, len(titles))
	dirErr := g.Fs.MkdirAll(dir, 0o755)
	if dirErr != nil {
		dirErr = fmt.Errorf("dummybuilder: create %s: %w", dir, dirErr)
	}
	for _, title := range titles {
		r := Result{Title: title, Err: dirErr}
		if dirErr == nil {
			r = g.generate(dir, system, identifier, title, blacklist)
		}
		g.log(r)
		results = append(results, r)
	}
	return results
}

func (g *Generator) generate(dir, system, identifier, title string, blacklist []string) Result {
	if Blacklisted(title, blacklist) {
		return Result{Title: title, Err: ErrBlacklisted}
	}
	name, err := PlaceholderName(title)
	if err != nil {
		return Result{Title: title, Err: err}
	}
	file := filepath.Join(dir, name)

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, scriptData{
		Title:      title,
		System:     system,
		Identifier: identifier,
		SystemDir:  dir,
	}); err != nil {
		return Result{Title: title, File: file, Err: fmt.Errorf("dummybuilder: render %s: %w", file, err)}
	}

	f, err := g.Fs.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return Result{Title: title, File: file, Err: ErrFileExists}
	}
	if err != nil {
		return Result{Title: title, File: file, Err: fmt.Errorf("dummybuilder: create %s: %w", file, err)}
	}
	_, werr := f.Write(buf.Bytes())
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		g.Fs.Remove(file)
		return Result{Title: title, File: file, Err: fmt.Errorf("dummybuilder: write %s: %w", file, werr)}
	}
	return Result{
		Title: title,
		File:  file,
		Entry: gamelist.Entry{Path: "./" + name, AltEmulator: gamelist.PythonLabel},
	}
}

func (g *Generator) log(r Result) {
	var nameErr *NameEncodingError
	switch {
	case r.Err == nil:
		g.Logger.Info().Str("file", r.File).Msg("successfully generated file")
	case errors.Is(r.Err, ErrBlacklisted):
		g.Logger.Debug().Str("title", r.Title).Msg("skipping blacklisted title")
	case errors.Is(r.Err, ErrFileExists):
		g.Logger.Warn().Str("file", r.File).Msg("file already exists")
	case errors.As(r.Err, &nameErr):
		g.Logger.Error().Err(r.Err).Msg("invalid file name")
	default:
		g.Logger.Error().Err(r.Err).Str("title", r.Title).Msg("error creating file")
	}
}
