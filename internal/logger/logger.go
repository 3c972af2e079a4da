// Package logger provides the verbosity-gated diagnostic logger shared by the
// matchers, the loader and the command line front end.
//
// A *Logger is passed explicitly through option structs instead of living in
// package state. A nil *Logger is valid and discards everything, so library
// callers that do not care about diagnostics can leave the field unset.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger writes diagnostics to an underlying log.Logger when the configured
// verbosity is at least the level of the message.
type Logger struct {
	out   *log.Logger
	level int
}

// New creates a Logger writing to w with the given verbosity. Verbosity 0
// only lets Printf through; Debugf(n, ...) needs verbosity >= n.
func New(w io.Writer, verbosity int) *Logger {
	return &Logger{
		out:   log.New(w, "", 0),
		level: verbosity,
	}
}

// Stderr creates a Logger on os.Stderr stamped with date, time and file, as
// the server entry point expects.
func Stderr(verbosity int) *Logger {
	l := New(os.Stderr, verbosity)
	l.out.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	return l
}

// V reports whether messages at level would be written.
func (l *Logger) V(level int) bool {
	return l != nil && l.level >= level
}

// Level returns the configured verbosity.
func (l *Logger) Level() int {
	if l == nil {
		return 0
	}
	return l.level
}

// Printf always writes, unless the logger is nil.
func (l *Logger) Printf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.output(format, args...)
}

// Debugf writes only when the verbosity is at least level.
func (l *Logger) Debugf(level int, format string, args ...interface{}) {
	if !l.V(level) {
		return
	}
	l.output(format, args...)
}

// output reports the caller of Printf or Debugf as the source file.
func (l *Logger) output(format string, args ...interface{}) {
	l.out.Output(3, fmt.Sprintf(format, args...))
}
