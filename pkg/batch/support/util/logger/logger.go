// Package logger provides the leveled logging facade used throughout the uploader.
// Messages are written through a zerolog.Logger; the package-level functions keep
// the printf-style call sites used by the batch components.
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

// LogLevel is a type representing the logging level.
type LogLevel int

const (
	// LevelDebug is the log level used for detailed debugging information.
	LevelDebug LogLevel = iota
	// LevelInfo is the log level used for general informational messages.
	LevelInfo
	// LevelWarn is the log level used for potential issues or warning messages.
	LevelWarn
	// LevelError is the log level used for error messages.
	LevelError
	// LevelFatal is the log level used for fatal error messages that cause application termination.
	LevelFatal
)

// Fields is a set of structured key/value pairs attached to a log line.
type Fields map[string]interface{}

var (
	mu       sync.RWMutex
	logLevel = LevelInfo
	base     = newBaseLogger(os.Stderr, false)
)

func newBaseLogger(w io.Writer, jsonOutput bool) zerolog.Logger {
	if !jsonOutput {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetOutput replaces the destination of all log lines.
// When jsonOutput is false, lines are rendered in zerolog's console format.
func SetOutput(w io.Writer, jsonOutput bool) {
	mu.Lock()
	defer mu.Unlock()
	base = newBaseLogger(w, jsonOutput)
}

// SetLogLevel sets the global log level.
// Valid string values are "DEBUG", "INFO", "WARN", "ERROR", "FATAL" (case-insensitive).
// Unknown values fall back to INFO.
func SetLogLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToUpper(level) {
	case "DEBUG", "TRACE":
		logLevel = LevelDebug
	case "INFO":
		logLevel = LevelInfo
	case "WARN":
		logLevel = LevelWarn
	case "ERROR":
		logLevel = LevelError
	case "FATAL", "SILENT":
		logLevel = LevelFatal
	default:
		fmt.Fprintf(os.Stderr, "Unknown log level '%s' specified. Defaulting to INFO level.\n", level)
		logLevel = LevelInfo
	}
}

// GetLogLevel returns the current global log level.
func GetLogLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return logLevel
}

func enabled(level LogLevel) bool {
	return GetLogLevel() <= level
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debugf formats and outputs a DEBUG level log message.
func Debugf(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		l := current()
		l.Debug().Msgf(format, v...)
	}
}

// Infof formats and outputs an INFO level log message.
func Infof(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		l := current()
		l.Info().Msgf(format, v...)
	}
}

// Warnf formats and outputs a WARN level log message.
func Warnf(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		l := current()
		l.Warn().Msgf(format, v...)
	}
}

// Errorf formats and outputs an ERROR level log message.
func Errorf(format string, v ...interface{}) {
	if enabled(LevelError) {
		l := current()
		l.Error().Msgf(format, v...)
	}
}

// Fatalf formats and outputs a FATAL level log message,
// then terminates the program by calling os.Exit(1).
func Fatalf(format string, v ...interface{}) {
	l := current()
	l.Fatal().Msgf(format, v...)
}

// Entry is a logger bound to a fixed set of structured fields.
type Entry struct {
	fields Fields
}

// WithFields returns an Entry that attaches fields to every message it emits.
func WithFields(fields Fields) *Entry {
	copied := make(Fields, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Entry{fields: copied}
}

// WithField returns a copy of the entry with one more field.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	next := WithFields(e.fields)
	next.fields[key] = value
	return next
}

func (e *Entry) event(level LogLevel) *zerolog.Event {
	l := current()
	var ev *zerolog.Event
	switch level {
	case LevelDebug:
		ev = l.Debug()
	case LevelWarn:
		ev = l.Warn()
	case LevelError:
		ev = l.Error()
	default:
		ev = l.Info()
	}
	return ev.Fields(map[string]interface{}(e.fields))
}

// Debugf emits a DEBUG message with the entry's fields.
func (e *Entry) Debugf(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		e.event(LevelDebug).Msgf(format, v...)
	}
}

// Infof emits an INFO message with the entry's fields.
func (e *Entry) Infof(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		e.event(LevelInfo).Msgf(format, v...)
	}
}

// Warnf emits a WARN message with the entry's fields.
func (e *Entry) Warnf(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		e.event(LevelWarn).Msgf(format, v...)
	}
}

// Errorf emits an ERROR message with the entry's fields.
func (e *Entry) Errorf(format string, v ...interface{}) {
	if enabled(LevelError) {
		e.event(LevelError).Msgf(format, v...)
	}
}
