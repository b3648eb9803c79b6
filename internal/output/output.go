// Package output provides context-aware output for gsm.
// Stdout is used for primary data output (tables, reports, JSON).
// Stderr (via log package) is used for diagnostics.
package output

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
)

type ctxKey struct{}

// Printer writes primary output to stdout.
type Printer struct {
	w      io.Writer
	styled io.Writer // downgrades ANSI styling to what w supports
}

// New creates a new Printer writing to the given writer.
func New(w io.Writer) *Printer {
	return newPrinter(w, os.Environ())
}

func newPrinter(w io.Writer, environ []string) *Printer {
	return &Printer{w: w, styled: colorprofile.NewWriter(w, environ)}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, New(w))
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Styled writes lipgloss-rendered text. Colors are reduced to the
// terminal's profile and dropped entirely when output is not a terminal
// or NO_COLOR is set.
func (p *Printer) Styled(s string) {
	io.WriteString(p.styled, s)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}
