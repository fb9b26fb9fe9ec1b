// Package logging configures the process-wide structured logger: a single
// sink, optionally redirected to --output, with a per-component
// sub-logger for the tagged error-message prefixes norerr uses ("WP:",
// "Layout:", "Probe:", ...).
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps the process-wide zerolog.Logger and its underlying sink so
// the envelope can close it on teardown.
type Logger struct {
	zerolog.Logger
	sink io.Closer
}

// New builds a logger writing human-readable output to os.Stderr, or to
// path when non-empty (--output <logfile>). verbosity follows the
// CLI's repeatable --verbose flag: 0 is Info, 1 is Debug, 2+ is Trace.
func New(path string, verbosity int) (*Logger, error) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	var closer io.Closer

	if path != "" && path != "-" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		out = f
		closer = f
	}

	level := zerolog.InfoLevel
	switch {
	case verbosity >= 2:
		level = zerolog.TraceLevel
	case verbosity == 1:
		level = zerolog.DebugLevel
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{Logger: l, sink: closer}, nil
}

// Component returns a sub-logger tagged with the given component name, the
// same tag used in CLI-facing error prefixes ("WP", "Layout", "Probe", ...).
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Close releases the underlying log file, if one was opened.
func (l *Logger) Close() error {
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}
