package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer
}

// Logger wraps zerolog with the small surface confset needs: leveled
// messages, deterministic field scoping, and per-unit scoping for engine
// call sites.
type Logger struct {
	base zerolog.Logger
}

// New creates a configured Logger instance based on Options. Diagnostics
// default to stderr so they never interleave with command output or the
// progress display.
func New(opts Options) (*Logger, error) {
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	if opts.HumanReadable {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("unknown log level %q", opts.Level)
		}
		level = parsed
	}

	base := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{base: base}, nil
}

// Discard returns a logger that drops every entry. Used by tests and by
// callers that have no logging destination.
func Discard() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// WithFields returns a derived logger that always writes the supplied
// fields. Keys are attached in sorted order so entries are deterministic.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	builder := l.base.With()
	for _, key := range keys {
		builder = builder.Interface(key, fields[key])
	}

	return &Logger{base: builder.Logger()}
}

// WithUnit returns a derived logger scoped to a configuration unit.
func (l *Logger) WithUnit(identifier string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Str("unit", identifier).Logger()}
}

// Info writes an informational log entry.
func (l *Logger) Info(msg string) {
	l.write(zerolog.InfoLevel, nil, msg)
}

// Debug writes a debug-level log entry if enabled.
func (l *Logger) Debug(msg string) {
	l.write(zerolog.DebugLevel, nil, msg)
}

// Warn writes a warning level log entry.
func (l *Logger) Warn(msg string) {
	l.write(zerolog.WarnLevel, nil, msg)
}

// Error writes an error log entry including the supplied error context.
func (l *Logger) Error(err error, msg string) {
	l.write(zerolog.ErrorLevel, err, msg)
}

func (l *Logger) write(level zerolog.Level, err error, msg string) {
	if l == nil {
		return
	}
	event := l.base.WithLevel(level)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}
