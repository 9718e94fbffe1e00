package notes

import (
	"bufio"
	"fmt"
	"strings"
)

// Parse reconstructs Notes from a rendered markdown document. It accepts
// what Render produces: "### <Title>" headings and "- " subject lines.
// Lines before the first heading are ignored, so documents with a
// prepended release title still parse. An unknown heading or stray text
// inside a section is an error.
func Parse(text string) (*Notes, error) {
	titles := make(map[string]Category, len(Categories()))
	for _, c := range Categories() {
		titles[c.Title()] = c
	}

	n := &Notes{}
	inSection := false
	var current Category

	lineNo := 0
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "### "):
			title := strings.TrimSpace(strings.TrimPrefix(line, "### "))
			c, ok := titles[title]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown section heading %q", lineNo, title)
			}
			current = c
			inSection = true
		case strings.HasPrefix(line, "- "):
			if !inSection {
				return nil, fmt.Errorf("line %d: subject outside of a section", lineNo)
			}
			n.add(current, strings.TrimPrefix(line, "- "))
		case strings.TrimSpace(line) == "":
			// Blank separator.
		case !inSection:
			// Preamble text before the first heading.
		default:
			return nil, fmt.Errorf("line %d: unexpected content %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning notes document: %w", err)
	}

	return n, nil
}
