// Package systems derives Python-launching variants of ES-DE system
// definitions and merges them into the custom es_systems.xml document.
package systems

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/go-i2p/esdummy/builder/gamelist"
	"github.com/go-i2p/esdummy/builder/xmldoc"
)

// PythonExtensions is appended to a system's extension list so that ES-DE
// picks up the placeholder scripts.
var PythonExtensions = []string{".py", ".PY"}

// Command is one <command label="..."> entry.
type Command struct {
	Label string     `xml:"label,attr,omitempty"`
	Attrs []xml.Attr `xml:",any,attr"`
	Text  string     `xml:",chardata"`
}

// System is one <system> definition. Fields are declared in the order ES-DE
// writes them; unknown children are kept in Extra.
type System struct {
	Comment   string           `xml:",comment"`
	Name      string           `xml:"name"`
	FullName  string           `xml:"fullname,omitempty"`
	Path      string           `xml:"path,omitempty"`
	Extension string           `xml:"extension"`
	Commands  []Command        `xml:"command"`
	Platform  string           `xml:"platform,omitempty"`
	Theme     string           `xml:"theme,omitempty"`
	Extra     []xmldoc.Element `xml:",any"`
}

// Clone returns a deep copy of s.
func (s System) Clone() System {
	c := s
	c.Commands = make([]Command, len(s.Commands))
	for i, cmd := range s.Commands {
		cmd.Attrs = append([]xml.Attr(nil), cmd.Attrs...)
		c.Commands[i] = cmd
	}
	c.Extra = xmldoc.CloneAll(s.Extra)
	return c
}

// SystemList is the <systemList> document root.
type SystemList struct {
	XMLName xml.Name `xml:"systemList"`
	Comment string   `xml:",comment"`
	Systems []System `xml:"system"`
}

// Find returns the first definition whose trimmed name equals name.
func (l *SystemList) Find(name string) (System, bool) {
	for _, s := range l.Systems {
		if strings.TrimSpace(s.Name) == name {
			return s, true
		}
	}
	return System{}, false
}

// Outcome describes what Merge did with the custom systems document.
type Outcome int

const (
	// NotFound means the reference document has no such system.
	NotFound Outcome = iota
	// Added means the derived definition was appended.
	Added
	// Replaced means an existing definition of the same name was updated.
	Replaced
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Replaced:
		return "replaced"
	default:
		return "not found"
	}
}

// Upsert stores def in l, replacing the first definition with the same
// trimmed name or appending it.
func (l *SystemList) Upsert(def System) Outcome {
	name := strings.TrimSpace(def.Name)
	for i, s := range l.Systems {
		if strings.TrimSpace(s.Name) == name {
			l.Systems[i] = def
			return Replaced
		}
	}
	l.Systems = append(l.Systems, def)
	return Added
}

// HasPythonExtension reports whether the extension list already accepts .py
// files.
func HasPythonExtension(extension string) bool {
	for _, ext := range strings.Fields(extension) {
		if strings.EqualFold(ext, ".py") {
			return true
		}
	}
	return false
}

// Derive returns a copy of ref that launches placeholder scripts: the
// extension list accepts .py/.PY (added once), and the command list ends with
// a single Python command cloned from the first command, relabelled and
// running launcher. ref is not modified.
func Derive(ref System, launcher string) (System, error) {
	if len(ref.Commands) == 0 {
		return System{}, fmt.Errorf("systems: %s has no command entries", strings.TrimSpace(ref.Name))
	}
	def := ref.Clone()

	if !HasPythonExtension(def.Extension) {
		exts := strings.Join(PythonExtensions, " ")
		if base := strings.TrimSpace(def.Extension); base != "" {
			exts = base + " " + exts
		}
		def.Extension = exts
	}

	python := def.Commands[0]
	python.Attrs = append([]xml.Attr(nil), python.Attrs...)
	python.Label = gamelist.PythonLabel
	python.Text = launcher

	commands := make([]Command, 0, len(def.Commands)+1)
	for _, c := range def.Commands {
		if c.Label != gamelist.PythonLabel {
			commands = append(commands, c)
		}
	}
	def.Commands = append(commands, python)
	return def, nil
}

// ReferenceProvider yields the local path of the reference systems document,
// fetching it first when needed.
type ReferenceProvider interface {
	Ensure(ctx context.Context) (string, error)
}

// Merger copies system definitions from the reference document into the
// custom systems document at CustomPath.
type Merger struct {
	Fs         afero.Fs
	Reference  ReferenceProvider
	CustomPath string
	// Launcher is the rendered Python launch command, e.g.
	// "/usr/bin/python3 %ROM%".
	Launcher string
	Logger   zerolog.Logger
}

// Merge derives the Python variant of system from the reference document and
// stores it in the custom document. An unknown system is logged and reported
// as NotFound without error. Re-running Merge with the same inputs leaves the
// custom document unchanged.
func (m *Merger) Merge(ctx context.Context, system string) (Outcome, error) {
	refPath, err := m.Reference.Ensure(ctx)
	if err != nil {
		return NotFound, err
	}
	var ref SystemList
	found, err := xmldoc.Read(m.Fs, refPath, &ref)
	if err != nil {
		return NotFound, fmt.Errorf("systems: reference: %w", err)
	}
	if !found {
		return NotFound, fmt.Errorf("systems: reference document %s is missing", refPath)
	}

	src, ok := ref.Find(system)
	if !ok {
		m.Logger.Warn().Str("system", system).Str("reference", refPath).Msg("system not found in reference systems file")
		return NotFound, nil
	}
	def, err := Derive(src, m.Launcher)
	if err != nil {
		return NotFound, err
	}

	var custom SystemList
	if _, err := xmldoc.Read(m.Fs, m.CustomPath, &custom); err != nil {
		return NotFound, fmt.Errorf("systems: custom: %w", err)
	}
	outcome := custom.Upsert(def)
	if err := xmldoc.Write(m.Fs, m.CustomPath, &custom); err != nil {
		return NotFound, fmt.Errorf("systems: %w", err)
	}
	m.Logger.Info().Str("system", system).Str("path", m.CustomPath).Stringer("outcome", outcome).Msg("successfully wrote custom systems file")
	return outcome, nil
}
