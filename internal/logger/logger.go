// Package logger provides logging for the apidocs CLI.
// Components receive a Logger rather than writing to a shared global,
// so tests can capture or silence output per component.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger is the logging interface injected into pipeline components.
type Logger interface {
	// Debug prints a message when verbose mode is enabled.
	Debug(format string, args ...any)

	// Info prints an informational message.
	Info(format string, args ...any)

	// Warn prints a warning message.
	Warn(format string, args ...any)

	// Error prints an error message.
	Error(format string, args ...any)

	// Section prints a stage header.
	Section(name string)
}

// Writer logs to an io.Writer. Debug messages are suppressed unless
// verbose mode is enabled.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// Ensure implementations satisfy the interface.
var (
	_ Logger = (*Writer)(nil)
	_ Logger = nop{}
)

// New creates a logger writing to w.
func New(w io.Writer, verbose bool) *Writer {
	return &Writer{out: w, verbose: verbose}
}

// Default returns a stderr logger.
func Default(verbose bool) *Writer {
	return New(os.Stderr, verbose)
}

// Debug prints a message when verbose mode is enabled.
func (l *Writer) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.print("[DEBUG] ", format, args...)
}

// Info prints an informational message.
func (l *Writer) Info(format string, args ...any) {
	l.print("[INFO] ", format, args...)
}

// Warn prints a warning message.
func (l *Writer) Warn(format string, args ...any) {
	l.print("[WARN] ", format, args...)
}

// Error prints an error message.
func (l *Writer) Error(format string, args ...any) {
	l.print("[ERROR] ", format, args...)
}

// Section prints a stage header.
func (l *Writer) Section(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "\n=== %s ===\n", name)
}

func (l *Writer) print(prefix, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, prefix+format+"\n", args...)
}

// nop discards all messages.
type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
func (nop) Section(string)       {}

// Nop returns a logger that discards everything. Useful as a default
// in constructors and in tests.
func Nop() Logger {
	return nop{}
}
