package notes

import (
	"fmt"
	"io"
	"strings"
)

// Render generates the markdown notes document: one titled section per
// non-empty category in display order, one line per subject, oldest
// first. Empty categories are omitted entirely. Given the same input the
// output is identical.
//
// Embedding the document in a tag annotation or a release body is the
// caller's responsibility.
func Render(n *Notes) string {
	var b strings.Builder
	// Builder writes cannot fail.
	_ = RenderTo(n, &b)
	return b.String()
}

// RenderTo writes the markdown notes document to w.
func RenderTo(n *Notes, w io.Writer) error {
	first := true
	for _, c := range Categories() {
		subjects := n.Section(c)
		if len(subjects) == 0 {
			continue
		}
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := renderSection(c.Title(), subjects, w); err != nil {
			return fmt.Errorf("rendering section %s: %w", c.Title(), err)
		}
		first = false
	}
	return nil
}

// renderSection writes a single category section with its subjects.
func renderSection(title string, subjects []string, w io.Writer) error {
	if _, err := io.WriteString(w, "### "+title+"\n"); err != nil {
		return err
	}
	for _, subject := range subjects {
		if _, err := io.WriteString(w, "- "+subject+"\n"); err != nil {
			return err
		}
	}
	return nil
}
