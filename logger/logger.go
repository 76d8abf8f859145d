package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
// It provides structured logging functionality with configurable output formatting.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// New creates a new ZeroLogger instance with the specified log level and formatting options.
// If pretty is true, output will be formatted for human readability.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOutput(level, pretty, os.Stdout)
}

// NewWithOutput creates a new ZeroLogger writing to the given output.
func NewWithOutput(level string, pretty bool, out io.Writer) *ZeroLogger {
	var l zerolog.Logger

	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(out).With().Timestamp().Logger()
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// WithFields returns a logger with additional fields attached to all log entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log}
}

// Level returns the logger's configured level.
func (l *ZeroLogger) Level() zerolog.Level {
	return l.zlog.GetLevel()
}
