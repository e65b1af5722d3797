package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "liblog.log")

	logger, err := New(&console, logFile, false)
	require.NoError(t, err)

	logger.Info().Str("system", "gba").Msg("populating")
	logger.Debug().Msg("hidden")

	assert.Contains(t, console.String(), "populating")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"system":"gba"`)
}

func TestNew_Verbose(t *testing.T) {
	var console, extra bytes.Buffer
	logger, err := New(&console, "", true, &extra)
	require.NoError(t, err)

	logger.Debug().Msg("visible")
	assert.Contains(t, console.String(), "visible")
	assert.Contains(t, extra.String(), `"level":"debug"`)
}
