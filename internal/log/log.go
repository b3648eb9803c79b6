// Package log provides context-aware logging for gsm.
//
// Plain progress lines go through Printf/Println. Leveled key-value records
// (Debug, Info, Warn, Error) are rendered by charmbracelet/log, using its
// text formatter on a terminal and logfmt otherwise so CI logs stay greppable.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

type ctxKey struct{}

// Logger provides output and verbose command logging.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool
	kv      *charmlog.Logger
}

// New creates a new logger. Quiet overrides verbose.
func New(out io.Writer, verbose, quiet bool) *Logger {
	level := charmlog.InfoLevel
	switch {
	case quiet:
		level = charmlog.ErrorLevel
	case verbose:
		level = charmlog.DebugLevel
	}

	kv := charmlog.NewWithOptions(out, charmlog.Options{Level: level})
	if !isTerminal(out) {
		kv.SetFormatter(charmlog.LogfmtFormatter)
	}

	return &Logger{out: out, verbose: verbose && !quiet, quiet: quiet, kv: kv}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return New(io.Discard, false, true)
}

// Printf writes formatted output. Suppressed when quiet.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output. Suppressed when quiet.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Debug logs a key-value record, only in verbose mode.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.kv.Debug(msg, keyvals...)
}

// Info logs a key-value record unless quiet.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.kv.Info(msg, keyvals...)
}

// Warn logs a key-value warning unless quiet.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.kv.Warn(msg, keyvals...)
}

// Error logs a key-value error. Never suppressed.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.kv.Error(msg, keyvals...)
}

// Command logs an external command execution and returns a function that
// appends its duration once the command finishes.
// Only prints when verbose mode is enabled.
func (l *Logger) Command(dir, name string, args ...string) func(time.Duration) {
	if !l.verbose {
		return func(time.Duration) {}
	}
	line := fmt.Sprintf("$ %s %s", name, strings.Join(args, " "))
	if dir != "" {
		line = fmt.Sprintf("[%s] %s", dir, line)
	}
	return func(d time.Duration) {
		fmt.Fprintf(l.out, "%s (%s)\n", line, d.Round(time.Millisecond))
	}
}

// Verbose returns true if verbose mode is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}
