// Package logging configures the zerolog logger shared by every esdummy
// command: a human readable console stream plus a rotated JSON log file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger writing to console and, when logFile is set, to a
// rotated JSON file. Extra writers are appended as-is.
func New(console io.Writer, logFile string, verbose bool, writers ...io.Writer) (zerolog.Logger, error) {
	outputs := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o750); err != nil {
			return zerolog.Nop(), err
		}
		outputs = append(outputs, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    1,
			MaxBackups: 2,
		})
	}
	outputs = append(outputs, writers...)

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.MultiLevelWriter(outputs...)).
		Level(level).
		With().Timestamp().Logger(), nil
}
