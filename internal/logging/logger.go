// Package logging provides simple logging for the adios project
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger wraps stdlib log with level support and a chain of bound
// context fields. Child loggers produced by With* share the parent's
// output mutex and writer so interleaved goroutines never tear a line.
type Logger struct {
	logger  *log.Logger
	level   LogLevel
	mu      *sync.Mutex
	fields  []any
	format  string
	noColor bool
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// LogLevel represents the available log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logging configuration
type Config struct {
	Level  LogLevel
	Output io.Writer

	// Format selects "text" (default) or "json" line rendering.
	Format string
	// Sync is accepted for parity with loggers that buffer writes;
	// this implementation always writes synchronously under mu, so it
	// has no effect beyond documenting intent.
	Sync bool
	// NoColor disables ANSI color codes in text format. Unused for
	// now since text format never emits color, but kept so callers
	// built against a colorized future format don't need a field
	// rename.
	NoColor bool
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Format: "text",
	}
}

// NewLogger creates a new logger
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	format := config.Format
	if format == "" {
		format = "text"
	}
	return &Logger{
		logger:  log.New(output, "", log.LstdFlags),
		level:   config.Level,
		mu:      &sync.Mutex{},
		format:  format,
		noColor: config.NoColor,
	}
}

// Default returns the default logger, creating it if necessary
func Default() *Logger {
	mu.RLock()
	if defaultLogger != nil {
		defer mu.RUnlock()
		return defaultLogger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// with returns a child logger carrying this logger's fields plus kv,
// sharing the underlying writer and mutex.
func (l *Logger) with(kv ...any) *Logger {
	fields := make([]any, 0, len(l.fields)+len(kv))
	fields = append(fields, l.fields...)
	fields = append(fields, kv...)
	return &Logger{
		logger:  l.logger,
		level:   l.level,
		mu:      l.mu,
		fields:  fields,
		format:  l.format,
		noColor: l.noColor,
	}
}

// WithDevice binds device_id to every subsequent message on the
// returned logger.
func (l *Logger) WithDevice(deviceID uint32) *Logger {
	return l.with("device_id", deviceID)
}

// WithQueue binds queue_id to every subsequent message on the
// returned logger.
func (l *Logger) WithQueue(queueID uint16) *Logger {
	return l.with("queue_id", queueID)
}

// WithRequest binds tag and op to every subsequent message on the
// returned logger.
func (l *Logger) WithRequest(tag uint16, op string) *Logger {
	return l.with("tag", tag, "op", op)
}

// WithError binds error to every subsequent message on the returned
// logger.
func (l *Logger) WithError(err error) *Logger {
	return l.with("error", err)
}

// formatArgs converts key-value pairs to a string
func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var result string
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			if result != "" {
				result += " "
			}
			result += fmt.Sprintf("%v=%v", args[i], args[i+1])
		}
	}
	if result != "" {
		return " " + result
	}
	return ""
}

func (l *Logger) log(level LogLevel, prefix, msg string, args ...any) {
	if level < l.level {
		return
	}
	all := args
	if len(l.fields) > 0 {
		all = make([]any, 0, len(l.fields)+len(args))
		all = append(all, l.fields...)
		all = append(all, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.format == "json" {
		l.logger.Printf(`{"level":%q,"msg":%q%s}`, prefix, msg, jsonTail(all))
		return
	}
	l.logger.Printf("%s %s%s", prefix, msg, formatArgs(all))
}

// jsonTail renders key-value pairs as trailing JSON object members.
// It's a minimal, allocation-light encoder: adios has no structured
// telemetry sink today, so this only needs to be grep-able, not a
// full json.Marshal replacement.
func jsonTail(args []any) string {
	var out string
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			out += fmt.Sprintf(",%q:%q", fmt.Sprint(args[i]), fmt.Sprint(args[i+1]))
		}
	}
	return out
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, "[DEBUG]", msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, "[INFO]", msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, "[WARN]", msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, "[ERROR]", msg, args...)
}

// Printf-style logging
func (l *Logger) Debugf(format string, args ...any) {
	l.log(LevelDebug, "[DEBUG]", fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.log(LevelInfo, "[INFO]", fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log(LevelWarn, "[WARN]", fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log(LevelError, "[ERROR]", fmt.Sprintf(format, args...))
}

// Printf for compatibility
func (l *Logger) Printf(format string, args ...any) {
	l.Infof(format, args...)
}

// Global convenience functions
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}
