package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel controls pipeline logging verbosity.
type LogLevel int

// The analysis pipeline logs at three levels: failures, recoverable
// statistical warnings (degenerate fits, near-constant genes, persistence
// errors on otherwise successful runs), and run progress.
const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
)

// Logger writes leveled messages through the standard log package.
type Logger struct {
	level LogLevel
}

// NewLogger creates a logger with the given verbosity.
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// NewDefaultLogger reads LOG_LEVEL (ERROR, WARN or INFO, case-insensitive).
// Unset or unrecognized values fall back to INFO.
func NewDefaultLogger() *Logger {
	level := LogLevelInfo
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "ERROR":
		level = LogLevelError
	case "WARN":
		level = LogLevelWarn
	}
	return &Logger{level: level}
}

// Error logs estimation, enrichment, and persistence failures.
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LogLevelError, "[ERROR] ", format, args...)
}

// Warn logs recoverable issues that are attached to the analysis record as
// warnings rather than failing the run.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LogLevelWarn, "[WARN] ", format, args...)
}

// Info logs run progress.
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LogLevelInfo, "[INFO] ", format, args...)
}

func (l *Logger) printf(level LogLevel, prefix, format string, args ...interface{}) {
	if l.level >= level {
		log.Printf(prefix+format, args...)
	}
}

// DefaultLogger is the process-wide logger used when callers pass nil.
var DefaultLogger = NewDefaultLogger()
