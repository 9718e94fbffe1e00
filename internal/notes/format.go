package notes

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a notes category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps categories to their terminal styling.
var categoryStyles = map[Category]CategoryStyle{
	CategoryFeature:       {Color: color.New(color.FgGreen), Icon: "✓"},
	CategoryImprovement:   {Color: color.New(color.FgBlue), Icon: "~"},
	CategoryFix:           {Color: color.New(color.FgYellow), Icon: "⚡"},
	CategoryDocumentation: {Color: color.New(color.FgCyan), Icon: "✎"},
	CategoryOther:         {Color: color.New(color.FgWhite), Icon: "•"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// Format writes the notes to w with terminal styling: color-coded
// category headers and indented, width-wrapped subject lines. The
// content mirrors the markdown rendering exactly; only the presentation
// differs.
func Format(n *Notes, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	first := true
	for _, c := range Categories() {
		subjects := n.Section(c)
		if len(subjects) == 0 {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		if err := writeSection(c, subjects, w, opts, width); err != nil {
			return fmt.Errorf("formatting section %s: %w", c.Title(), err)
		}
		first = false
	}

	return nil
}

// writeSection writes a single category header and its subjects.
func writeSection(c Category, subjects []string, w io.Writer, opts FormatOptions, width int) error {
	style := categoryStyles[c]

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "### %s\n", c.Title()); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "%s %s\n", colored(style.Icon), colored(c.Title())); err != nil {
			return err
		}
	}

	for _, subject := range subjects {
		if err := writeSubject(subject, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeSubject writes a single subject line with optional wrapping.
func writeSubject(subject string, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, subject)
		return err
	}

	wrapped := wrapText(subject, width-len(prefix), "    ")
	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for
// continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
