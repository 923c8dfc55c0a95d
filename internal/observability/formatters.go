// Package observability provides console output and diagnostic logging for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
)

var (
	warnLabel    = color.New(color.FgYellow).Sprint("warning")
	errorLabel   = color.New(color.FgRed).Sprint("error")
	debugLabel   = color.New(color.FgBlue).Sprint("debug")
	successLabel = color.New(color.FgGreen).Sprint("success")
	dim          = color.New(color.Faint).SprintFunc()
)

// Printer handles user-facing console output.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// NewPrinter creates a new Printer that writes everything to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, errOut: out}
}

// NewConsolePrinter creates a Printer that sends warnings and errors to errOut.
func NewConsolePrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

//nolint:errcheck // writing to the console; errors are not recoverable
func (p *Printer) println(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

// Log prints args as-is.
func (p *Printer) Log(args ...any) {
	p.println(p.out, args...)
}

// Warn prints a yellow "warning" label followed by args.
func (p *Printer) Warn(args ...any) {
	p.println(p.errOut, append([]any{warnLabel}, args...)...)
}

// Error prints a red "error" label followed by args.
func (p *Printer) Error(args ...any) {
	p.println(p.errOut, append([]any{errorLabel}, args...)...)
}

// Debug prints a blue "debug" label followed by args.
func (p *Printer) Debug(args ...any) {
	p.println(p.out, append([]any{debugLabel}, args...)...)
}

// Success prints a green "success" label followed by args.
func (p *Printer) Success(args ...any) {
	p.println(p.out, append([]any{successLabel}, args...)...)
}

// Dim prints faint text.
func (p *Printer) Dim(text string) {
	p.println(p.out, dim(text))
}

// Step prints a "[step/total]" prefixed progress line.
func (p *Printer) Step(step, total int, args ...any) {
	prefix := dim(fmt.Sprintf("[%d/%d]", step, total))
	p.println(p.out, append([]any{prefix}, args...)...)
}

// OnStep lets a Printer observe pipeline progress.
func (p *Printer) OnStep(index, total int, description string) {
	p.Step(index, total, description)
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines from the left so file names stay visible
		if len(line) > boxWidth-4 {
			line = "..." + line[len(line)-(boxWidth-7):]
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// OutputFile is one artifact listed by PrintFilesWritten.
type OutputFile struct {
	Kind string
	Path string
}

// PrintFilesWritten outputs the rendered artifacts after a successful run.
func (p *Printer) PrintFilesWritten(files []OutputFile) {
	if len(files) == 0 {
		return
	}

	var sb strings.Builder
	for i, f := range files {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%-6s %s", "["+f.Kind+"]", f.Path))
	}

	p.printBox("FILES WRITTEN", sb.String())
}
