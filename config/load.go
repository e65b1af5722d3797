package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteDefault when the target file is already
// present and force is false.
var ErrConfigExists = errors.New("config: configuration file already exists")

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

// expandPathHook expands every string decoded into a Path field.
func expandPathHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(Path("")) {
		return data, nil
	}
	return Path(ExpandPath(data.(string))), nil
}

// DecodeHook is passed to viper.Unmarshal.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		expandPathHook,
		mapstructure.StringToSliceHookFunc(","),
	)
}

// SetDefaults registers the scalar and list keys of Default() on v so that a
// partial configuration file still yields a complete Conf. rom_archives is
// left out: viper merges nested maps across layers and the sample archives
// would leak into every user configuration.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("python_path", string(d.PythonPath))
	v.SetDefault("python_launcher", d.PythonLauncher)
	v.SetDefault("library_path", string(d.LibraryPath))
	v.SetDefault("esde_path", string(d.ESDEPath))
	v.SetDefault("windows_systems_url", d.WindowsSystemsURL)
	v.SetDefault("linux_systems_url", d.LinuxSystemsURL)
	v.SetDefault("macos_systems_url", d.MacOSSystemsURL)
	v.SetDefault("blacklist", d.Blacklist)
	v.SetDefault("rom_extensions", d.ROMExtensions)
	v.SetDefault("reference_file", string(d.ReferenceFile))
	v.SetDefault("stats_file", string(d.StatsFile))
	v.SetDefault("log_file", string(d.LogFile))
	v.SetDefault("archive_url", d.ArchiveURL)
	v.SetDefault("fetch_retries", d.FetchRetries)
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Conf, error) {
	c := &Conf{}
	if err := v.Unmarshal(c, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteDefault writes the default configuration document to path as YAML.
func WriteDefault(fs afero.Fs, path string, force bool) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if exists && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
