package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-i2p/esdummy/config"
	dummystats "github.com/go-i2p/esdummy/stats"
)

const testReference = `<?xml version="1.0"?>
<systemList>
	<system>
		<name>gba</name>
		<fullname>Nintendo Game Boy Advance</fullname>
		<path>%ROMPATH%/gba</path>
		<extension>.gba .zip</extension>
		<command label="mGBA">retroarch %ROM%</command>
		<platform>gba</platform>
		<theme>gba</theme>
	</system>
</systemList>
`

// run executes the root command against fs with fresh viper state and flag
// defaults, returning stdout.
func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	appFs = fs
	viper.Reset()
	resetFlags(rootCmd)
	t.Setenv("ESDUMMY_LOG_FILE", filepath.Join(t.TempDir(), "liblog.log"))

	var out, stderr bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// writeConfig stores a configuration pointing every location into fs.
func writeConfig(t *testing.T, fs afero.Fs, archiveURL string) string {
	t.Helper()
	doc := strings.Join([]string{
		"python_path: /usr/bin/python3",
		"library_path: /roms",
		"esde_path: /esde",
		"reference_file: /cache/es_systems.xml",
		"stats_file: /data/stats.json",
		"archive_url: " + archiveURL,
		"fetch_retries: 0",
		"rom_archives:",
		"  gba:",
		"    - gba-item",
		"",
	}, "\n")
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte(doc), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/cache/es_systems.xml", []byte(testReference), 0o644))
	return "/cfg/config.yaml"
}

func archiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metadata/gba-item" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"files":[{"name":"Advance Wars (USA).zip"},{"name":"Advance Wars (Beta).zip"},{"name":"cover.jpg"}]}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"populate", "populate-all", "clean", "update-resources", "add-system", "init-config", "stats"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cleanCmd.Flags().Lookup("gamelists"))
}

func TestInitConfig(t *testing.T) {
	fs := afero.NewMemMapFs()

	out, err := run(t, fs, "init-config", "--config", "/cfg/config.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "/cfg/config.yaml")
	exists, _ := afero.Exists(fs, "/cfg/config.yaml")
	assert.True(t, exists)

	_, err = run(t, fs, "init-config", "--config", "/cfg/config.yaml")
	assert.True(t, errors.Is(err, config.ErrConfigExists))

	_, err = run(t, fs, "init-config", "--config", "/cfg/config.yaml", "--force")
	require.NoError(t, err)
}

// TestSetup_WritesDefaultOnFirstRun checks that an operational command
// creates the configuration file when none exists yet.
func TestSetup_WritesDefaultOnFirstRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	out, err := run(t, fs, "stats", "--config", "/fresh/config.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "total")

	exists, _ := afero.Exists(fs, "/fresh/config.yaml")
	assert.True(t, exists)
}

func TestPopulateAddSystemAndClean(t *testing.T) {
	fs := afero.NewMemMapFs()
	ts := archiveServer(t)
	cfg := writeConfig(t, fs, ts.URL)

	_, err := run(t, fs, "populate", "gba", "gba-item", "--config", cfg)
	require.NoError(t, err)

	exists, _ := afero.Exists(fs, "/roms/gba/Advance Wars (USA).py")
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "/roms/gba/Advance Wars (Beta).py")
	assert.False(t, exists, "blacklisted")

	gl, err := afero.ReadFile(fs, "/esde/gamelists/gba/gamelist.xml")
	require.NoError(t, err)
	assert.Contains(t, string(gl), "<path>./Advance Wars (USA).py</path>")

	custom, err := afero.ReadFile(fs, "/esde/custom_systems/es_systems.xml")
	require.NoError(t, err)
	assert.Contains(t, string(custom), `<command label="Python">/usr/bin/python3 %ROM%</command>`)
	assert.Contains(t, string(custom), ".gba .zip .py .PY")

	_, err = run(t, fs, "add-system", "gba", "--config", cfg)
	require.NoError(t, err)
	again, err := afero.ReadFile(fs, "/esde/custom_systems/es_systems.xml")
	require.NoError(t, err)
	assert.Equal(t, custom, again)

	out, err := run(t, fs, "stats", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "gba")

	_, err = run(t, fs, "clean", "--gamelists", "--config", cfg)
	require.NoError(t, err)
	exists, _ = afero.Exists(fs, "/roms/gba/Advance Wars (USA).py")
	assert.False(t, exists)
	gl, err = afero.ReadFile(fs, "/esde/gamelists/gba/gamelist.xml")
	require.NoError(t, err)
	assert.NotContains(t, string(gl), "Advance Wars")
}

// TestPopulateAll_UnknownItemDoesNotFail checks that a failing target is
// logged without changing the exit status.
func TestPopulateAll_UnknownItemDoesNotFail(t *testing.T) {
	fs := afero.NewMemMapFs()
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	cfg := writeConfig(t, fs, ts.URL)

	_, err := run(t, fs, "populate-all", "--config", cfg)
	require.NoError(t, err)
	exists, _ := afero.Exists(fs, "/esde/gamelists/gba/gamelist.xml")
	assert.False(t, exists)
}

func TestStats_Chart(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := writeConfig(t, fs, "https://archive.org")
	require.NoError(t, afero.WriteFile(fs, "/data/stats.json", []byte(`{"gba":2,"nes":1}`), 0o644))

	out, err := run(t, fs, "stats", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "total        3")

	_, err = run(t, fs, "stats", "--config", cfg, "--out", "/tmp/stats.svg")
	require.NoError(t, err)
	svg, err := afero.ReadFile(fs, "/tmp/stats.svg")
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestSetup_InvalidConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte("archive_url: not-a-url\n"), 0o600))
	_, err := run(t, fs, "stats", "--config", "/cfg/config.yaml")
	require.Error(t, err)
}

// TestPopulate_ReferenceNotFound runs populate with no cached reference file
// and every systems URL answering 404: the placeholders are still written,
// listed and counted, and the command succeeds.
func TestPopulate_ReferenceNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metadata/gba-item" {
			_, _ = w.Write([]byte(`{"files":[{"name":"Advance Wars (USA).zip"}]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	doc := strings.Join([]string{
		"python_path: /usr/bin/python3",
		"library_path: /roms",
		"esde_path: /esde",
		"reference_file: /cache/es_systems.xml",
		"stats_file: /data/stats.json",
		"archive_url: " + ts.URL,
		"windows_systems_url: " + ts.URL + "/windows/es_systems.xml",
		"linux_systems_url: " + ts.URL + "/linux/es_systems.xml",
		"macos_systems_url: " + ts.URL + "/macos/es_systems.xml",
		"fetch_retries: 0",
		"",
	}, "\n")
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte(doc), 0o600))

	_, err := run(t, fs, "populate", "gba", "gba-item", "--config", "/cfg/config.yaml")
	require.NoError(t, err)

	exists, _ := afero.Exists(fs, "/roms/gba/Advance Wars (USA).py")
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "/esde/gamelists/gba/gamelist.xml")
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "/esde/custom_systems/es_systems.xml")
	assert.False(t, exists)
	exists, _ = afero.Exists(fs, "/cache/es_systems.xml")
	assert.False(t, exists)

	data, err := afero.ReadFile(fs, "/data/stats.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"gba":1}`, string(data))
}

// TestStats_EmptyChartWritesNothing checks that a chart request with no
// recorded placeholders fails without leaving an empty file behind.
func TestStats_EmptyChartWritesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := writeConfig(t, fs, "https://archive.org")

	_, err := run(t, fs, "stats", "--config", cfg, "--out", "/out/stats.svg")
	require.ErrorIs(t, err, dummystats.ErrNoData)
	exists, _ := afero.Exists(fs, "/out/stats.svg")
	assert.False(t, exists)
}

func TestStats_ChartPathIsExpanded(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := writeConfig(t, fs, "https://archive.org")
	require.NoError(t, afero.WriteFile(fs, "/data/stats.json", []byte(`{"gba":2}`), 0o644))

	_, err := run(t, fs, "stats", "--config", cfg, "--out", "~/esdummy-stats.svg")
	require.NoError(t, err)

	exists, _ := afero.Exists(fs, config.ExpandPath("~/esdummy-stats.svg"))
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "~/esdummy-stats.svg")
	assert.False(t, exists)
}
