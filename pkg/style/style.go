// Package style renders wslkit's console status output.
//
// Every line the tool prints about a mutation goes through a Printer so that
// dry-run previews, notices and step headers look the same everywhere and so
// tests can capture output in a buffer.
package style

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Status styles for action lines
var (
	OKStyle     = pterm.NewStyle(pterm.FgGreen)
	NoticeStyle = pterm.NewStyle(pterm.FgCyan)
	WarnStyle   = pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	ErrorStyle  = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	DryRunStyle = pterm.NewStyle(pterm.FgMagenta)
	StepStyle   = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
)

// Printer writes status lines for the run. When out is not a terminal the
// styles degrade to plain text so piped output stays clean.
type Printer struct {
	out   io.Writer
	plain bool
}

// NewPrinter creates a Printer writing to out. Styling is enabled only when
// out is the process's terminal.
func NewPrinter(out io.Writer) *Printer {
	plain := true
	if f, ok := out.(*os.File); ok {
		plain = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{out: out, plain: plain}
}

// NewPlainPrinter creates a Printer that never styles output. Used in tests.
func NewPlainPrinter(out io.Writer) *Printer {
	return &Printer{out: out, plain: true}
}

func (p *Printer) line(style *pterm.Style, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.plain {
		fmt.Fprintf(p.out, "%s %s\n", prefix, msg)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", style.Sprint(prefix), msg)
}

// OK reports a state that is already correct or was made correct.
func (p *Printer) OK(format string, args ...interface{}) {
	p.line(OKStyle, "OK:", format, args...)
}

// Notice reports a decision the operator should know about.
func (p *Printer) Notice(format string, args ...interface{}) {
	p.line(NoticeStyle, "NOTICE:", format, args...)
}

// Warn reports a suspicious but non-fatal condition.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(WarnStyle, "WARNING:", format, args...)
}

// Error reports a fatal condition before the error propagates.
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(ErrorStyle, "ERROR:", format, args...)
}

// DryRun reports the action a real run would take.
func (p *Printer) DryRun(format string, args ...interface{}) {
	p.line(DryRunStyle, "DRY RUN:", format, args...)
}

// Step prints a numbered step header, e.g. "[2/7] Creating project structure...".
func (p *Printer) Step(n, total int, format string, args ...interface{}) {
	header := fmt.Sprintf("[%d/%d] %s", n, total, fmt.Sprintf(format, args...))
	if p.plain {
		fmt.Fprintf(p.out, "\n%s\n", header)
		return
	}
	fmt.Fprintf(p.out, "\n%s\n", StepStyle.Sprint(header))
}

// Plain prints an unstyled line.
func (p *Printer) Plain(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Writer exposes the underlying writer for output that bypasses styling,
// like captured external-command output shown verbatim.
func (p *Printer) Writer() io.Writer {
	return p.out
}
