// Package output holds the shared color and symbol print helpers for
// relcut commands. It sits below cli and progress so both can use it
// without an import cycle.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const fallbackWidth = 80

var (
	stageIndicator = color.New(color.FgCyan, color.Bold).SprintFunc()
	stageName      = color.New(color.FgWhite, color.Bold).SprintFunc()
	dividerRule    = color.New(color.FgMagenta, color.Faint).SprintFunc()
	actionMark     = color.New(color.FgMagenta).SprintFunc()
	actionText     = color.New(color.Faint).SprintFunc()
)

// PrintStageHeader prints the plain stage header used when no spinner
// runs, e.g. "[Stage 2/5] Generate notes...".
func PrintStageHeader(out io.Writer, stageNum, totalStages int, name string) {
	fmt.Fprintf(out, "%s %s\n", stageIndicator(fmt.Sprintf("[Stage %d/%d]", stageNum, totalStages)), stageName(name+"..."))
}

// PrintPlannedAction prints one side effect a dry run would have taken,
// marked with the arrow of the active symbol set.
func PrintPlannedAction(out io.Writer, mark, action string) {
	fmt.Fprintf(out, "%s %s\n", actionMark(mark), actionText(action))
}

// PrintDivider prints a dim full-width labeled rule, setting the release
// summary apart from stage output.
func PrintDivider(out io.Writer, label string) {
	label = " " + label + " "
	side := (terminalWidth() - len(label)) / 2
	if side < 3 {
		side = 3
	}

	rule := strings.Repeat("─", side)
	fmt.Fprintf(out, "\n%s%s%s\n", dividerRule(rule), dividerRule(label), dividerRule(rule))
}

// terminalWidth reads the stdout width, falling back to 80 columns for
// piped output.
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return fallbackWidth
}
