// Package output formats command-line output.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/Cyclone1070/locatecat/internal/score"
)

// ColorMode represents color output mode
type ColorMode int

const (
	// ColorAuto enables colors based on environment (default)
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever forces colors off
	ColorNever
)

// ParseColorMode parses a string into a ColorMode
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors determines whether to use colors based on mode and environment
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// Printer writes status messages and results.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
	quiet     bool
}

// NewPrinter creates a printer on stdout and stderr.
func NewPrinter(mode ColorMode, quiet bool) *Printer {
	return NewPrinterWithWriters(os.Stdout, os.Stderr, ResolveColors(mode), quiet)
}

// NewPrinterWithWriters creates a printer on the given writers.
func NewPrinterWithWriters(out, err io.Writer, useColors, quiet bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors, quiet: quiet}
}

// Out returns the writer results go to.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...any) {
	if p.quiet {
		return
	}
	p.colored(p.out, color.FgCyan, "", format, args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	if p.quiet {
		return
	}
	if p.useColors {
		p.colored(p.out, color.FgGreen, "✓ ", format, args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	if p.quiet {
		return
	}
	if p.useColors {
		p.colored(p.err, color.FgYellow, "⚠ ", format, args...)
		return
	}
	fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
}

// Error prints an error message, even in quiet mode.
func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		p.colored(p.err, color.FgRed, "✗ ", format, args...)
		return
	}
	fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
}

func (p *Printer) colored(w io.Writer, attr color.Attribute, prefix, format string, args ...any) {
	if !p.useColors {
		fmt.Fprintf(w, prefix+format+"\n", args...)
		return
	}
	c := color.New(attr)
	c.EnableColor()
	c.Fprintf(w, prefix+format+"\n", args...)
}

// Highlight marks the occurrences of query in s.
func (p *Printer) Highlight(query, s string) string {
	if !p.useColors {
		return s
	}
	c := color.New(color.FgMagenta, color.Bold)
	c.EnableColor()
	return score.Highlight(query, s, func(m string) string { return c.Sprint(m) })
}

// Dim returns dimmed text
func (p *Printer) Dim(text string) string {
	if !p.useColors {
		return text
	}
	c := color.New(color.Faint)
	c.EnableColor()
	return c.Sprint(text)
}
