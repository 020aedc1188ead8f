package logx

import (
	"fmt"
	"os"
)

var defaultLogger *Logger

func init() {
	format := FormatConsole
	if os.Getenv("LOG_FORMAT") == "json" {
		format = FormatJSON
	}
	defaultLogger = NewLogger(ParseLevel(os.Getenv("LOG_LEVEL")), format)
}

// SetDefaultLogger sets the default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the default logger
func GetDefaultLogger() *Logger {
	return defaultLogger
}

// SetLevel sets the log level for the default logger
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// Debug logs a debug level message
func Debug(msg string) {
	defaultLogger.log(LevelDebug, msg, nil)
}

// Info logs an info level message
func Info(msg string) {
	defaultLogger.log(LevelInfo, msg, nil)
}

// Warn logs a warning level message
func Warn(msg string) {
	defaultLogger.log(LevelWarn, msg, nil)
}

// Error logs an error level message
func Error(msg string) {
	defaultLogger.log(LevelError, msg, nil)
}

// Fatal logs a fatal level message and exits
func Fatal(msg string) {
	defaultLogger.log(LevelFatal, msg, nil)
	defaultLogger.exit(1)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a formatted fatal message and exits
func Fatalf(format string, args ...interface{}) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil)
	defaultLogger.exit(1)
}

// WithField creates an entry on the default logger with a field
func WithField(key string, value interface{}) *Entry {
	return defaultLogger.WithField(key, value)
}

// WithFields creates an entry on the default logger with fields
func WithFields(fields Fields) *Entry {
	return defaultLogger.WithFields(fields)
}

// WithError creates an entry on the default logger with an error field
func WithError(err error) *Entry {
	return defaultLogger.WithError(err)
}
