package dlog

import (
	"io"
	"log"
	"os"
)

// Logger wraps the default Go logger with Debug functions that add a
// layer of logging useful during development; Debug output is compiled
// in with the `debug` build tag and is otherwise a no-op
type Logger struct {
	*log.Logger
}

// LoggerOption adjusts a Logger during construction
type LoggerOption func(*Logger)

// NewLogger returns a Logger writing to stderr with the standard flags
func NewLogger(options ...LoggerOption) *Logger {
	l := &Logger{log.New(os.Stderr, "", log.LstdFlags)}

	for _, option := range options {
		option(l)
	}

	return l
}

// LoggerSetOutput sets the destination for log output
func LoggerSetOutput(w io.Writer) LoggerOption {
	return func(l *Logger) {
		l.SetOutput(w)
	}
}

// LoggerSetPrefix sets the prefix for each log line
func LoggerSetPrefix(p string) LoggerOption {
	return func(l *Logger) {
		l.SetPrefix(p)
	}
}

// LoggerSetFlags sets the log.Logger flags
func LoggerSetFlags(flag int) LoggerOption {
	return func(l *Logger) {
		l.SetFlags(flag)
	}
}
