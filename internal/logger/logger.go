// Package logger provides process-wide logging for the cohort tracker.
// It wraps a zerolog logger behind a small printf-style surface so that
// core services do not depend on zerolog directly. Debug and Info messages
// appear only in verbose mode; warnings and errors are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	format  = FormatConsole
	output  io.Writer = os.Stderr
	log     = build(output, format, verbose)
)

// build creates the zerolog logger for the current settings (caller must hold lock).
func build(w io.Writer, f string, v bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if v {
		level = zerolog.DebugLevel
	}

	if f == FormatJSON {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build(output, format, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build(output, format, verbose)
}

// SetFormat selects console or json output.
func SetFormat(f string) error {
	f = strings.ToLower(strings.TrimSpace(f))
	if f != FormatConsole && f != FormatJSON {
		return fmt.Errorf("unknown log format %q (want %s or %s)", f, FormatConsole, FormatJSON)
	}

	mu.Lock()
	defer mu.Unlock()
	format = f
	log = build(output, format, verbose)
	return nil
}

// Log returns a copy of the underlying logger for structured fields.
func Log() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// With returns a child logger carrying a string field.
func With(key, value string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log.With().Str(key, value).Logger()
}

// Debug logs a message if verbose mode is enabled.
func Debug(msg string, args ...any) {
	l := Log()
	l.Debug().Msgf(msg, args...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(msg string, args ...any) {
	l := Log()
	l.Info().Msgf(msg, args...)
}

// Warn logs a warning.
func Warn(msg string, args ...any) {
	l := Log()
	l.Warn().Msgf(msg, args...)
}

// Error logs an error with its cause.
func Error(err error, msg string, args ...any) {
	l := Log()
	l.Error().Err(err).Msgf(msg, args...)
}

// Section prints a section header if verbose mode is enabled.
// Headers are only written in console format.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose && format == FormatConsole {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
