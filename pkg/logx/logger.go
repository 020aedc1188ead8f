package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Fields is a map of structured log fields
type Fields map[string]interface{}

// Format selects the output encoding
type Format string

const (
	// FormatConsole renders human readable lines
	FormatConsole Format = "console"
	// FormatJSON renders one JSON object per line
	FormatJSON Format = "json"
)

// Logger is the main logger instance
type Logger struct {
	mu       sync.Mutex
	level    Level
	format   Format
	writer   io.Writer
	exitFunc func(int)
}

// NewLogger creates a new logger writing to stdout
func NewLogger(level Level, format Format) *Logger {
	return &Logger{
		level:    level,
		format:   format,
		writer:   os.Stdout,
		exitFunc: os.Exit,
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// log is the internal logging method
func (l *Logger) log(level Level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.level.Enabled(level) {
		return
	}

	now := time.Now()
	var line []byte

	switch l.format {
	case FormatJSON:
		payload := map[string]interface{}{
			"time":    now.Format(time.RFC3339Nano),
			"level":   level.String(),
			"message": msg,
		}
		for k, v := range fields {
			payload[k] = v
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logx: failed to encode entry: %v\n", err)
			return
		}
		line = append(encoded, '\n')
	default:
		out := fmt.Sprintf("%s [%s] %s", now.Format("2006-01-02 15:04:05"), level.String(), msg)
		if len(fields) > 0 {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				out += fmt.Sprintf(" %s=%v", k, fields[k])
			}
		}
		line = []byte(out + "\n")
	}

	if _, err := l.writer.Write(line); err != nil {
		fmt.Fprintf(os.Stderr, "logx: failed to write entry: %v\n", err)
	}
}

// WithField creates a new entry with a field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return newEntry(l).WithField(key, value)
}

// WithFields creates a new entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

// WithError creates a new entry with an error field
func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}

// exit calls the exit function (useful for testing)
func (l *Logger) exit(code int) {
	l.exitFunc(code)
}

// Entry allows for building up log entries with multiple fields
type Entry struct {
	logger *Logger
	fields Fields
}

func newEntry(logger *Logger) *Entry {
	return &Entry{logger: logger, fields: make(Fields)}
}

// WithField adds a field to the entry (chainable)
func (e *Entry) WithField(key string, value interface{}) *Entry {
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the entry (chainable)
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError adds an error field (chainable)
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

// Debug logs at debug level
func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields) }

// Info logs at info level
func (e *Entry) Info(msg string) { e.logger.log(LevelInfo, msg, e.fields) }

// Warn logs at warn level
func (e *Entry) Warn(msg string) { e.logger.log(LevelWarn, msg, e.fields) }

// Error logs at error level
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields) }

// Debugf logs formatted debug message
func (e *Entry) Debugf(format string, args ...interface{}) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields)
}

// Infof logs formatted info message
func (e *Entry) Infof(format string, args ...interface{}) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields)
}

// Warnf logs formatted warn message
func (e *Entry) Warnf(format string, args ...interface{}) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields)
}

// Errorf logs formatted error message
func (e *Entry) Errorf(format string, args ...interface{}) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields)
}
