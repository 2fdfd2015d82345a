// Package logging builds the zerolog loggers used by the CLI, experiments and
// storage backends.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New writes JSON lines to w, or human-readable lines when pretty is set.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Stderr logs to standard error, pretty-printed when it is a terminal.
func Stderr(level string) zerolog.Logger {
	return New(os.Stderr, level, isatty.IsTerminal(os.Stderr.Fd()))
}

// Nop discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
