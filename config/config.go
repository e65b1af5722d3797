// Package config holds the esdummy configuration document, its defaults and
// the helpers that turn raw viper values into a validated Conf.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
)

// AppName is used for the XDG sub-directories and the environment prefix.
const AppName = "esdummy"

// PythonPathToken is replaced by the expanded PythonPath when rendering the
// launcher command.
const PythonPathToken = "{python_path}"

// ErrUnsupportedPlatform is returned by SystemsURL for operating systems that
// ES-DE does not publish a reference systems document for.
var ErrUnsupportedPlatform = errors.New("config: unsupported platform")

// Path is a filesystem path that is tilde-expanded when decoded.
type Path string

func (p Path) String() string { return string(p) }

type Conf struct {
	PythonPath        Path                `mapstructure:"python_path" yaml:"python_path" validate:"required"`
	PythonLauncher    string              `mapstructure:"python_launcher" yaml:"python_launcher" validate:"required,contains=%ROM%"`
	LibraryPath       Path                `mapstructure:"library_path" yaml:"library_path" validate:"required"`
	ESDEPath          Path                `mapstructure:"esde_path" yaml:"esde_path" validate:"required"`
	WindowsSystemsURL string              `mapstructure:"windows_systems_url" yaml:"windows_systems_url" validate:"omitempty,http_url"`
	LinuxSystemsURL   string              `mapstructure:"linux_systems_url" yaml:"linux_systems_url" validate:"omitempty,http_url"`
	MacOSSystemsURL   string              `mapstructure:"macos_systems_url" yaml:"macos_systems_url" validate:"omitempty,http_url"`
	Blacklist         []string            `mapstructure:"blacklist" yaml:"blacklist" validate:"dive,required"`
	ROMExtensions     []string            `mapstructure:"rom_extensions" yaml:"rom_extensions" validate:"min=1,dive,required"`
	ROMArchives       map[string][]string `mapstructure:"rom_archives" yaml:"rom_archives" validate:"dive,keys,required,endkeys,dive,required"`
	ReferenceFile     Path                `mapstructure:"reference_file" yaml:"reference_file" validate:"required"`
	StatsFile         Path                `mapstructure:"stats_file" yaml:"stats_file" validate:"required"`
	LogFile           Path                `mapstructure:"log_file" yaml:"log_file"`
	ArchiveURL        string              `mapstructure:"archive_url" yaml:"archive_url" validate:"required,http_url"`
	FetchRetries      int                 `mapstructure:"fetch_retries" yaml:"fetch_retries" validate:"gte=0,lte=10"`
}

// Default returns the configuration written on first run.
func Default() *Conf {
	return &Conf{
		PythonPath:        "~/.venv/bin/python3",
		PythonLauncher:    PythonPathToken + " %ROM%",
		LibraryPath:       "~/Emulation/roms",
		ESDEPath:          "~/ES-DE",
		WindowsSystemsURL: "https://gitlab.com/es-de/emulationstation-de/-/raw/master/resources/systems/windows/es_systems.xml",
		LinuxSystemsURL:   "https://gitlab.com/es-de/emulationstation-de/-/raw/master/resources/systems/linux/es_systems.xml",
		MacOSSystemsURL:   "https://gitlab.com/es-de/emulationstation-de/-/raw/master/resources/systems/macos/es_systems.xml",
		Blacklist: []string{
			"(Europe)", "(Japan)", "(France)", "(Germany)", "[BIOS", "[DLC", "[UPDATE",
			"(Beta", "(Rev", "(Arcade", "(Proto", "(Sample", "(Competition Cart", "(Pirate", "(Demo",
		},
		ROMExtensions: []string{"*7z", "*zip", "*chd", "*rvz"},
		ROMArchives: map[string][]string{
			"gba":  {"abc123"},
			"snes": {"def456", "ghi789"},
		},
		ReferenceFile: Path(filepath.Join(xdg.CacheHome, AppName, "es_systems.xml")),
		StatsFile:     Path(filepath.Join(xdg.DataHome, AppName, "stats.json")),
		LogFile:       Path(filepath.Join(xdg.StateHome, AppName, "liblog.log")),
		ArchiveURL:    "https://archive.org",
		FetchRetries:  3,
	}
}

// DefaultConfigFile is where the configuration lives when --config is not
// given.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Validate checks the struct tags on c.
func (c *Conf) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

// Launcher renders the command ES-DE runs for placeholder scripts.
func (c *Conf) Launcher() string {
	return strings.ReplaceAll(c.PythonLauncher, PythonPathToken, ExpandPath(string(c.PythonPath)))
}

// SystemsURL picks the reference es_systems.xml URL for goos (a
// runtime.GOOS value).
func (c *Conf) SystemsURL(goos string) (string, error) {
	var url string
	switch goos {
	case "windows":
		url = c.WindowsSystemsURL
	case "linux":
		url = c.LinuxSystemsURL
	case "darwin":
		url = c.MacOSSystemsURL
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
	if url == "" {
		return "", fmt.Errorf("config: no systems URL configured for %s", goos)
	}
	return url, nil
}

// GamelistsDir is ES-DE's per-system gamelist root.
func (c *Conf) GamelistsDir() string {
	return filepath.Join(string(c.ESDEPath), "gamelists")
}

// CustomSystemsFile is the ES-DE custom systems document merged into by
// add-system.
func (c *Conf) CustomSystemsFile() string {
	return filepath.Join(string(c.ESDEPath), "custom_systems", "es_systems.xml")
}
