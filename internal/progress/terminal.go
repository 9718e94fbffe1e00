package progress

import (
	"os"

	"golang.org/x/term"
)

// DetectTerminalCapabilities probes stdout and the environment. Piped
// output disables the spinner, color, and unicode marks. NO_COLOR
// disables color on a TTY, RELCUT_ASCII=1 swaps unicode marks for
// ASCII, and CI environments suppress the spinner even on a TTY so
// release logs stay line-oriented.
func DetectTerminalCapabilities() TerminalCapabilities {
	fd := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(fd)

	caps := TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && os.Getenv("NO_COLOR") == "",
		SupportsUnicode: isTTY && os.Getenv("RELCUT_ASCII") != "1",
		InCI:            runningInCI(),
	}
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil {
			caps.Width = w
		}
	}
	return caps
}

// runningInCI reports whether a CI system drives the run. GitHub
// Actions, GitLab, and most others export CI=true.
func runningInCI() bool {
	v := os.Getenv("CI")
	return v != "" && v != "false" && v != "0"
}

// SelectSymbols returns the stage marks for the detected terminal.
// SpinnerSet indexes into spinner.CharSets: braille dots on unicode
// terminals, the |/-\ rotor otherwise.
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return ProgressSymbols{
			Checkmark:  "✓",
			Failure:    "✗",
			Skip:       "◦",
			Arrow:      "→",
			SpinnerSet: 14,
		}
	}
	return ProgressSymbols{
		Checkmark:  "[OK]",
		Failure:    "[FAIL]",
		Skip:       "-",
		Arrow:      "->",
		SpinnerSet: 9,
	}
}
