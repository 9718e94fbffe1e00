// Package progress renders live stage progress for release runs.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/relcut/relcut/internal/output"
)

// TerminalCapabilities describes what the attached terminal supports.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	InCI            bool
	Width           int
}

// ProgressSymbols is the symbol set selected for a terminal.
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	Skip       string
	Arrow      string
	SpinnerSet int
}

// spinnerInterval is the frame delay for the stage spinner.
const spinnerInterval = 100 * time.Millisecond

// Display renders stage progress. On a TTY the running stage animates a
// spinner; otherwise each stage prints as a plain header line.
type Display struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	total   int
	current int
	spinner *spinner.Spinner
}

// NewDisplay builds a Display for the detected terminal.
func NewDisplay(out io.Writer, totalStages int) *Display {
	return NewDisplayWithCapabilities(out, totalStages, DetectTerminalCapabilities())
}

// NewDisplayWithCapabilities builds a Display with explicit capabilities,
// used by tests and by commands that force plain output.
func NewDisplayWithCapabilities(out io.Writer, totalStages int, caps TerminalCapabilities) *Display {
	return &Display{
		out:     out,
		caps:    caps,
		symbols: SelectSymbols(caps),
		total:   totalStages,
	}
}

// StartStage advances to the next stage and begins rendering it. CI
// runs print plain headers even on a TTY so logs stay line-oriented.
func (d *Display) StartStage(name string) {
	d.current++
	if d.caps.IsTTY && !d.caps.InCI {
		sp := spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerInterval,
			spinner.WithWriter(d.out),
			spinner.WithSuffix(fmt.Sprintf(" [Stage %d/%d] %s...", d.current, d.total, name)),
		)
		sp.Start()
		d.spinner = sp
		return
	}
	output.PrintStageHeader(d.out, d.current, d.total, name)
}

// FinishStage stops the running stage and prints its outcome.
func (d *Display) FinishStage(message string) {
	d.stopSpinner()
	mark := d.symbols.Checkmark
	if d.caps.SupportsColor {
		mark = color.GreenString(mark)
	}
	fmt.Fprintf(d.out, "%s %s\n", mark, message)
}

// FailStage stops the running stage and prints the failure marker.
func (d *Display) FailStage(message string) {
	d.stopSpinner()
	mark := d.symbols.Failure
	if d.caps.SupportsColor {
		mark = color.RedString(mark)
	}
	fmt.Fprintf(d.out, "%s %s\n", mark, message)
}

// SkipStage consumes a stage slot without running it.
func (d *Display) SkipStage(message string) {
	d.current++
	mark := d.symbols.Skip
	if d.caps.SupportsColor {
		mark = color.New(color.Faint).Sprint(mark)
	}
	fmt.Fprintf(d.out, "%s %s\n", mark, message)
}

// Printf writes a plain line between stages.
func (d *Display) Printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

// PlannedAction prints a side effect a dry run would have taken.
func (d *Display) PlannedAction(action string) {
	output.PrintPlannedAction(d.out, d.symbols.Arrow, action)
}

// Stop halts any running spinner without printing an outcome.
func (d *Display) Stop() {
	d.stopSpinner()
}

func (d *Display) stopSpinner() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}
