// Package diagnostics provides the coloured, levelled console output used by
// the stapi CLI.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Level represents the level of diagnostic output
type Level int

const (
	Silent Level = iota
	Error
	Warn
	Info
	Verbose
	Debug
)

// System provides structured, user-friendly output
type System struct {
	level    Level
	showTime bool
	output   io.Writer
	errorOut io.Writer
	indent   int
}

// New creates a new diagnostic system writing to stdout/stderr
func New(level Level) *System {
	return NewWithWriters(level, os.Stdout, os.Stderr)
}

// NewWithWriters creates a diagnostic system with explicit writers
func NewWithWriters(level Level, output, errorOut io.Writer) *System {
	return &System{
		level:    level,
		showTime: level >= Verbose,
		output:   output,
		errorOut: errorOut,
	}
}

// NewQuiet creates a diagnostic system that only shows errors
func NewQuiet() *System {
	return New(Error)
}

// NewVerbose creates a diagnostic system with full output
func NewVerbose() *System {
	return New(Verbose)
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	verboseColor = color.New(color.FgHiBlack)
	debugColor   = color.New(color.FgMagenta)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

// Error outputs error messages (always shown unless silent)
func (d *System) Error(format string, args ...any) {
	if d.level >= Error {
		d.writeMessage(d.errorOut, "ERROR", errorColor, format, args...)
	}
}

// Warn outputs warning messages
func (d *System) Warn(format string, args ...any) {
	if d.level >= Warn {
		d.writeMessage(d.output, "WARN", warnColor, format, args...)
	}
}

// Info outputs informational messages
func (d *System) Info(format string, args ...any) {
	if d.level >= Info {
		d.writeMessage(d.output, "INFO", infoColor, format, args...)
	}
}

// Success outputs success messages with emphasis
func (d *System) Success(format string, args ...any) {
	if d.level >= Info {
		d.writeMessage(d.output, "SUCCESS", successColor, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *System) Verbose(format string, args ...any) {
	if d.level >= Verbose {
		d.writeMessage(d.output, "VERBOSE", verboseColor, format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *System) Debug(format string, args ...any) {
	if d.level >= Debug {
		d.writeMessage(d.output, "DEBUG", debugColor, format, args...)
	}
}

// Section creates a prominent section header
func (d *System) Section(title string) {
	if d.level >= Info {
		headerColor.Fprintf(d.output, "%s\n", title)
	}
}

// List outputs a bulleted list item
func (d *System) List(format string, args ...any) {
	if d.level >= Info {
		fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), fmt.Sprintf(format, args...))
	}
}

// Indent increases the indentation level
func (d *System) Indent() {
	d.indent++
}

// Unindent decreases the indentation level
func (d *System) Unindent() {
	if d.indent > 0 {
		d.indent--
	}
}

// Summary outputs a final summary with statistics, sorted by key
func (d *System) Summary(title string, stats map[string]any) {
	if d.level < Info {
		return
	}
	fmt.Fprintf(d.output, "\n%s\n", title)

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(d.output, "   %s: %v\n", key, stats[key])
	}
	fmt.Fprintln(d.output)
}

func (d *System) writeMessage(writer io.Writer, level string, c *color.Color, format string, args ...any) {
	var output strings.Builder
	output.WriteString(d.getIndent())

	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	output.WriteString(c.Sprintf("[%s]", level))
	output.WriteString(" ")
	output.WriteString(fmt.Sprintf(format, args...))
	output.WriteString("\n")

	fmt.Fprint(writer, output.String())
}

func (d *System) getIndent() string {
	return strings.Repeat("  ", d.indent)
}
